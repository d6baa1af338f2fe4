// Package interfaces provides internal interface definitions for
// aesdsock. These are separate from the top-level package's exported
// types to avoid import cycles between it and the internal packages
// that need to speak the same narrow vocabulary.
package interfaces

import (
	"io"

	"github.com/aesdsock/aesdsock/internal/uapi"
)

// Store is the narrow backing-store abstraction the connection worker
// and timestamp producer are written against. It is satisfied by both
// the local-file store and the character-device store (internal/store).
type Store interface {
	// OpenAppendRead (re)opens the store for a connection's lifetime.
	OpenAppendRead() error

	// Append writes bytes to the store's current position.
	Append(p []byte) error

	// Seek repositions the store's read cursor to an absolute offset.
	Seek(offset int64) error

	// ReadLine reads up to len(buf) bytes into buf, returning the
	// number of bytes read and io.EOF once the store is exhausted.
	ReadLine(buf []byte) (int, error)

	// Ioctl executes the seek-to-command protocol. Only meaningful on
	// the character-device store; the local-file store always returns
	// an unsupported-operation error.
	Ioctl(seek uapi.AesdSeekTo) error

	// Close releases the store handle acquired by OpenAppendRead.
	Close() error
}

// Logger is the narrow logging interface internal packages depend on.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer collects operational metrics. Implementations must be
// thread-safe: methods are called concurrently from every connection
// worker and from the timestamp producer.
type Observer interface {
	ObserveConnection(peer string)
	ObserveWrite(bytes int, latencyNs int64, success bool)
	ObservePlayback(bytes int, latencyNs int64, success bool)
	ObserveSeek(success bool)
	ObserveTimestamp(success bool)
}

// compile-time assertion that every Store is also an io.Closer.
var _ io.Closer = Store(nil)
