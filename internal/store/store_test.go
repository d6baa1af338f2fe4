package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aesdsock/aesdsock/internal/uapi"
)

func TestFileStoreAppendAndReadBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.dat")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer fs.Remove()

	h := fs.Handle()
	if err := h.OpenAppendRead(); err != nil {
		t.Fatalf("OpenAppendRead failed: %v", err)
	}
	defer h.Close()

	if err := h.Append([]byte("hello\n")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := h.Append([]byte("world\n")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := h.Seek(0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := h.ReadLine(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got, want := string(buf[:n]), "hello\nworld\n"; got != want {
		t.Errorf("ReadLine = %q, want %q", got, want)
	}
}

func TestFileStoreIoctlUnsupported(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "store.dat"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer fs.Remove()

	h := fs.Handle()
	_ = h.OpenAppendRead()
	defer h.Close()

	if err := h.Ioctl(uapi.AesdSeekTo{}); err == nil {
		t.Error("expected Ioctl on a plain file store to fail")
	}
}

func TestFileStoreRemoveDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.dat")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := fs.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}
}

func TestDeviceStoreHandleRoundTrip(t *testing.T) {
	ds := NewDeviceStore(10)
	h := ds.Handle()
	if err := h.OpenAppendRead(); err != nil {
		t.Fatalf("OpenAppendRead failed: %v", err)
	}
	defer h.Close()

	if err := h.Append([]byte("AAA\n")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := h.Seek(0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := h.ReadLine(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got, want := string(buf[:n]), "AAA\n"; got != want {
		t.Errorf("ReadLine = %q, want %q", got, want)
	}
}
