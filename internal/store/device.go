package store

import (
	"github.com/aesdsock/aesdsock/internal/chardev"
	"github.com/aesdsock/aesdsock/internal/interfaces"
)

// DeviceStore backs the socket server with the in-process simulated
// character device. It exists for the lifetime of the server process,
// exactly like a real /dev/aesdchar's driver-resident state.
type DeviceStore struct {
	device *chardev.Device
}

// NewDeviceStore creates an empty simulated device with the given
// retention capacity.
func NewDeviceStore(capacity int) *DeviceStore {
	return &DeviceStore{device: chardev.New(capacity)}
}

// Handle returns a view for a single connection's lifetime.
func (s *DeviceStore) Handle() *chardev.Handle {
	return s.device.Open()
}

var _ interfaces.Store = (*chardev.Handle)(nil)
