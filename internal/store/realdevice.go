//go:build linux

package store

import (
	"io"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// RealDeviceStore backs the socket server with an actual /dev/aesdchar
// node (the companion kernel module described in
// original_source/aesd-char-driver, loaded out-of-band), opened once
// for the server's lifetime and shared across connections the same
// way FileStore shares a single *os.File — serialization across
// connections comes from the caller's lock, not from this type.
// DeviceStore (device.go) provides the equivalent behavior in-process
// for every other environment.
type RealDeviceStore struct {
	path string

	mu sync.Mutex
	fd int
}

// NewRealDeviceStore verifies path names a character device, then
// opens it for combined read/write use for the remainder of the
// process lifetime.
func NewRealDeviceStore(path string) (*RealDeviceStore, error) {
	if err := statDevice(path); err != nil {
		return nil, err
	}
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, aesdsock.WrapError("NewRealDeviceStore", err)
	}
	return &RealDeviceStore{path: path, fd: fd}, nil
}

// Path returns the backing device node's path.
func (s *RealDeviceStore) Path() string { return s.path }

// Handle returns a *RealDeviceHandle view for a single connection's
// lifetime; the underlying fd is shared.
func (s *RealDeviceStore) Handle() *RealDeviceHandle {
	return &RealDeviceHandle{store: s}
}

// Close releases the underlying device fd. Called once, at server
// shutdown — never by a per-connection Handle.
func (s *RealDeviceStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := unix.Close(s.fd); err != nil {
		return aesdsock.WrapError("Close", err)
	}
	return nil
}

// RealDeviceHandle implements interfaces.Store over a
// RealDeviceStore's shared fd.
type RealDeviceHandle struct {
	store *RealDeviceStore
	open  bool
}

func (h *RealDeviceHandle) OpenAppendRead() error {
	h.open = true
	return nil
}

func (h *RealDeviceHandle) Append(p []byte) error {
	if !h.open {
		return aesdsock.NewError("Append", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if _, err := unix.Write(h.store.fd, p); err != nil {
		return aesdsock.WrapError("Append", err)
	}
	return nil
}

func (h *RealDeviceHandle) Seek(offset int64) error {
	if !h.open {
		return aesdsock.NewError("Seek", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if _, err := unix.Seek(h.store.fd, offset, io.SeekStart); err != nil {
		return aesdsock.WrapError("Seek", err)
	}
	return nil
}

func (h *RealDeviceHandle) ReadLine(buf []byte) (int, error) {
	if !h.open {
		return 0, aesdsock.NewError("ReadLine", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	n, err := unix.Read(h.store.fd, buf)
	if err != nil {
		return n, aesdsock.WrapError("ReadLine", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Ioctl issues the real AESDCHAR_IOCSEEKTO syscall via
// unix.IoctlSetInt's lower-level sibling, unix.Syscall(SYS_IOCTL, ...),
// since the payload is a struct rather than a single int.
func (h *RealDeviceHandle) Ioctl(arg uapi.AesdSeekTo) error {
	if !h.open {
		return aesdsock.NewError("Ioctl", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	payload := uapi.MarshalSeekTo(arg)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(h.store.fd), uintptr(uapi.AESDCHAR_IOCSEEKTO), uintptr(unsafe.Pointer(&payload[0])))
	if errno != 0 {
		return aesdsock.NewErrorWithErrno("Ioctl", mapIoctlErrno(errno), errno)
	}
	return nil
}

func (h *RealDeviceHandle) Close() error {
	h.open = false
	return nil
}

func mapIoctlErrno(errno unix.Errno) aesdsock.ErrorCode {
	switch errno {
	case unix.EINVAL:
		return aesdsock.ErrCodeInvalidArgument
	case unix.EFAULT:
		return aesdsock.ErrCodeUserMemoryFault
	case unix.ENOTTY:
		return aesdsock.ErrCodeUnsupported
	default:
		return aesdsock.ErrCodeIO
	}
}

var _ interfaces.Store = (*RealDeviceHandle)(nil)

// statDevice verifies path names a character device before opening
// it for real, so misconfiguration (pointing -device-path at a
// regular file) fails fast with a clear error rather than succeeding
// against the wrong kind of node.
func statDevice(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return aesdsock.WrapError("statDevice", err)
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return aesdsock.NewError("statDevice", aesdsock.ErrCodeInvalidArgument, path+" is not a character device")
	}
	return nil
}
