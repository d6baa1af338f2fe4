package chardev

import (
	"io"
	"testing"

	"github.com/aesdsock/aesdsock/internal/uapi"
)

func writeCommand(t *testing.T, d *Device, s string) {
	t.Helper()
	if _, err := d.Write([]byte(s)); err != nil {
		t.Fatalf("Write(%q) failed: %v", s, err)
	}
}

func TestWriteAccumulatesUntilNewline(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "hello ")
	writeCommand(t, d, "world\n")

	if got, want := d.TotalSize(), int64(len("hello world\n")); got != want {
		t.Errorf("TotalSize() = %d, want %d", got, want)
	}
}

func TestReadAtReturnsConcatenatedStream(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AAA\n")
	writeCommand(t, d, "BBB\n")

	buf := make([]byte, 64)
	n, err := d.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if got, want := string(buf[:n]), "AAA\nBBB\n"; got != want {
		t.Errorf("ReadAt = %q, want %q", got, want)
	}
}

func TestReadAtEOFBeyondStream(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AAA\n")

	buf := make([]byte, 64)
	_, err := d.ReadAt(buf, 100)
	if err != io.EOF {
		t.Errorf("ReadAt beyond stream: err = %v, want io.EOF", err)
	}
}

func TestAdjustToCommand(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AA\n")  // offsets 0-2
	writeCommand(t, d, "BBB\n") // offsets 3-6
	writeCommand(t, d, "C\n")   // offsets 7-8

	pos, err := d.AdjustToCommand(1, 1)
	if err != nil {
		t.Fatalf("AdjustToCommand failed: %v", err)
	}
	if want := int64(4); pos != want {
		t.Errorf("AdjustToCommand(1, 1) = %d, want %d", pos, want)
	}
}

func TestAdjustToCommandOutOfRange(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AA\n")

	if _, err := d.AdjustToCommand(5, 0); err == nil {
		t.Error("expected error for out-of-range command index")
	}
	if _, err := d.AdjustToCommand(0, 10); err == nil {
		t.Error("expected error for out-of-range command offset")
	}
}

func TestHandleSeekAndReadLine(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "E\n")
	writeCommand(t, d, "F\n")
	writeCommand(t, d, "G\n")

	h := d.Open()
	if err := h.OpenAppendRead(); err != nil {
		t.Fatalf("OpenAppendRead failed: %v", err)
	}
	defer h.Close()

	if err := h.Seek(2); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := h.ReadLine(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got, want := string(buf[:n]), "F\nG\n"; got != want {
		t.Errorf("ReadLine = %q, want %q", got, want)
	}
}

func TestHandleIoctlRepositions(t *testing.T) {
	d := New(10)
	for _, s := range []string{"A\n", "B\n", "C\n", "D\n"} {
		writeCommand(t, d, s)
	}

	h := d.Open()
	_ = h.OpenAppendRead()
	defer h.Close()

	if err := h.Ioctl(uapi.AesdSeekTo{WriteCmd: 3, WriteCmdOffset: 0}); err != nil {
		t.Fatalf("Ioctl failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := h.ReadLine(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got, want := string(buf[:n]), "D\n"; got != want {
		t.Errorf("ReadLine after Ioctl = %q, want %q", got, want)
	}
}

func TestHandleIoctlInvalidSeekReturnsEINVAL(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AA\n")

	h := d.Open()
	_ = h.OpenAppendRead()
	defer h.Close()

	err := h.Ioctl(uapi.AesdSeekTo{WriteCmd: 9, WriteCmdOffset: 5})
	if err == nil {
		t.Fatal("expected error for invalid seek coordinate")
	}
}

func TestAccessModeRestrictsOperations(t *testing.T) {
	d := New(10)
	h := d.Open().WithAccessMode(AccessReadOnly)
	_ = h.OpenAppendRead()
	defer h.Close()

	if err := h.Append([]byte("nope\n")); err == nil {
		t.Error("expected Append to fail on a read-only handle")
	}
}

func TestOpenWriteOnlyResetsDevice(t *testing.T) {
	d := New(10)
	writeCommand(t, d, "AA\n")
	writeCommand(t, d, "BB\n")
	if got := d.TotalSize(); got == 0 {
		t.Fatalf("TotalSize() = %d before reopening, want nonzero", got)
	}

	h := d.Open().WithAccessMode(AccessWriteOnly)
	if err := h.OpenAppendRead(); err != nil {
		t.Fatalf("OpenAppendRead failed: %v", err)
	}
	defer h.Close()

	if got := d.TotalSize(); got != 0 {
		t.Errorf("TotalSize() after write-only open = %d, want 0", got)
	}

	// A partial command written before the reset must not resurface
	// once the accumulator is cleared.
	d2 := New(10)
	if _, err := d2.Write([]byte("partial")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	h2 := d2.Open().WithAccessMode(AccessWriteOnly)
	if err := h2.OpenAppendRead(); err != nil {
		t.Fatalf("OpenAppendRead failed: %v", err)
	}
	defer h2.Close()
	writeCommand(t, d2, "fresh\n")

	buf := make([]byte, 64)
	n, err := d2.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if got, want := string(buf[:n]), "fresh\n"; got != want {
		t.Errorf("ReadAt = %q, want %q (partial accumulator should not resurface)", got, want)
	}
}

func TestRingWrapAroundEvictsOldestCommand(t *testing.T) {
	d := New(2)
	writeCommand(t, d, "A\n")
	writeCommand(t, d, "B\n")
	writeCommand(t, d, "C\n")

	buf := make([]byte, 64)
	n, _ := d.ReadAt(buf, 0)
	if got, want := string(buf[:n]), "B\nC\n"; got != want {
		t.Errorf("stream after eviction = %q, want %q", got, want)
	}
}
