package aesdsock

import (
	"io"
	"sync"

	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// MockStore is an in-memory interfaces.Store for tests that need a
// store double without a real file or the simulated character device.
// It tracks call counts so tests can assert on worker behavior without
// inspecting the bytes that moved.
type MockStore struct {
	mu   sync.Mutex
	data []byte
	pos  int64

	closed      bool
	ioctlErr    error
	openCalls   int
	appendCalls int
	seekCalls   int
	readCalls   int
	ioctlCalls  int
	closeCalls  int
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// WithIoctlError makes every call to Ioctl fail with err, for
// exercising a worker's error handling around the seek protocol.
func (m *MockStore) WithIoctlError(err error) *MockStore {
	m.ioctlErr = err
	return m
}

func (m *MockStore) OpenAppendRead() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCalls++
	m.closed = false
	return nil
}

func (m *MockStore) Append(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.closed {
		return NewError("Append", ErrCodeClosed, "store closed")
	}
	m.data = append(m.data, p...)
	return nil
}

func (m *MockStore) Seek(offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls++
	if offset < 0 || offset > int64(len(m.data)) {
		return NewError("Seek", ErrCodeInvalidArgument, "offset out of range")
	}
	m.pos = offset
	return nil
}

func (m *MockStore) ReadLine(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++
	if m.closed {
		return 0, NewError("ReadLine", ErrCodeClosed, "store closed")
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MockStore) Ioctl(seek uapi.AesdSeekTo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ioctlCalls++
	if m.ioctlErr != nil {
		return m.ioctlErr
	}
	return NewError("Ioctl", ErrCodeUnsupported, "MockStore does not model the ring")
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	m.closed = true
	return nil
}

// Contents returns a copy of the bytes appended so far.
func (m *MockStore) Contents() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// IsClosed reports whether Close has been called.
func (m *MockStore) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCounts returns how many times each Store method has been invoked.
func (m *MockStore) CallCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"open":   m.openCalls,
		"append": m.appendCalls,
		"seek":   m.seekCalls,
		"read":   m.readCalls,
		"ioctl":  m.ioctlCalls,
		"close":  m.closeCalls,
	}
}

var _ interfaces.Store = (*MockStore)(nil)
