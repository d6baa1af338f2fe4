//go:build !linux

package store

import (
	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/interfaces"
)

// RealDeviceStore is unavailable off Linux: there is no /dev/aesdchar
// node to open. NewRealDeviceStore always fails; this stub exists only
// so -store=realdevice is a runtime error rather than a build failure
// on non-Linux platforms.
type RealDeviceStore struct{}

func NewRealDeviceStore(path string) (*RealDeviceStore, error) {
	return nil, aesdsock.NewError("NewRealDeviceStore", aesdsock.ErrCodeUnsupported, "realdevice store requires linux")
}

func (s *RealDeviceStore) Handle() interfaces.Store { return nil }

func (s *RealDeviceStore) Close() error { return nil }
