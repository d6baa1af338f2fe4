// Package store provides the two concrete backing-store
// implementations the connection worker is written against via
// internal/interfaces.Store: a regular local file
// (connection_info.c's fopen/fprintf/fgets path) and the simulated
// character device (internal/chardev).
package store

import (
	"io"
	"os"
	"sync"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// FileStore backs the socket server with a single shared regular
// file, opened for append+read across the server's lifetime and
// never truncated; Remove deletes it. Mirrors original_source's
// output_file: one fopen("a+") shared by every connection, guarded by
// a single mutex.
type FileStore struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewFileStore opens (creating if necessary) the file at path for
// append+read use for the remainder of the process lifetime.
func NewFileStore(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, aesdsock.WrapError("NewFileStore", err)
	}
	return &FileStore{path: path, file: f}, nil
}

// Path returns the backing file's path.
func (s *FileStore) Path() string { return s.path }

// Handle returns a *FileHandle view for a single connection's
// lifetime; the underlying *os.File is shared, matching the shared
// output_file_mutex serialization connection_info.c relies
// on (the supervisor/worker holds a coarser lock around the whole
// per-connection sequence; FileHandle additionally takes the store's
// mutex around each individual Append, Seek and ReadLine).
func (s *FileStore) Handle() *FileHandle {
	return &FileHandle{store: s}
}

// Remove closes and deletes the backing file. Used by tests and by
// Server.Shutdown, which always calls it for a file-backed server
// (original_source's aesdsocket.c removes
// /var/tmp/aesdsocketdata from its SIGINT/SIGTERM handler).
func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Close(); err != nil {
		return aesdsock.WrapError("Remove", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return aesdsock.WrapError("Remove", err)
	}
	return nil
}

// FileHandle implements interfaces.Store over a FileStore's shared
// *os.File.
type FileHandle struct {
	store *FileStore
	open  bool
}

func (h *FileHandle) OpenAppendRead() error {
	h.open = true
	return nil
}

func (h *FileHandle) Append(p []byte) error {
	if !h.open {
		return aesdsock.NewError("Append", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, err := h.store.file.Seek(0, io.SeekEnd); err != nil {
		return aesdsock.WrapError("Append", err)
	}
	if _, err := h.store.file.Write(p); err != nil {
		return aesdsock.WrapError("Append", err)
	}
	return nil
}

func (h *FileHandle) Seek(offset int64) error {
	if !h.open {
		return aesdsock.NewError("Seek", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if _, err := h.store.file.Seek(offset, io.SeekStart); err != nil {
		return aesdsock.WrapError("Seek", err)
	}
	return nil
}

func (h *FileHandle) ReadLine(buf []byte) (int, error) {
	if !h.open {
		return 0, aesdsock.NewError("ReadLine", aesdsock.ErrCodeClosed, "handle not open")
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	n, err := h.store.file.Read(buf)
	if err != nil && err != io.EOF {
		return n, aesdsock.WrapError("ReadLine", err)
	}
	return n, err
}

// Ioctl is unsupported on a plain file: the seek-to-command protocol
// only applies to the character-device store.
func (h *FileHandle) Ioctl(uapi.AesdSeekTo) error {
	return aesdsock.NewErrorWithErrno("Ioctl", aesdsock.ErrCodeUnsupported, errnoENOTTY)
}

func (h *FileHandle) Close() error {
	h.open = false
	return nil
}

var _ interfaces.Store = (*FileHandle)(nil)
