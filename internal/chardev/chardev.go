// Package chardev implements the simulated aesdchar character device:
// a serialized wrapper over the bounded command ring (internal/ring)
// providing line-reassembly for writes, a translated read cursor, and
// the AESDCHAR_IOCSEEKTO ioctl.
//
// A real kernel character device cannot be registered from a Go
// module, so Device stands in for it: same file_operations-shaped API
// (open/write/read/seek/ioctl), same ring-backed retention semantics,
// reachable in-process by anything that imports this package and,
// when /dev/aesdchar is actually present (the companion kernel module
// loaded), mirrored faithfully enough that internal/store's real-file
// implementation can exercise the identical ioctl wire format.
package chardev

import (
	"io"
	"sync"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/constants"
	"github.com/aesdsock/aesdsock/internal/interfaces"
	"github.com/aesdsock/aesdsock/internal/ring"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// Device is the shared, process-wide state behind /dev/aesdchar: the
// command ring plus the in-progress (not yet newline-terminated)
// write accumulator. Every exported method locks mu itself, matching
// original_source's per-syscall mutex_lock_interruptible/mutex_unlock
// pairing in aesd-char-driver/main.c — independent of whatever
// coarser lock a caller (the socket worker) may also be holding.
type Device struct {
	mu          sync.Mutex
	ring        *ring.Ring
	accumulator []byte
}

// New creates an empty device with the given retention capacity.
func New(capacity int) *Device {
	if capacity <= 0 {
		capacity = constants.RingCapacity
	}
	return &Device{ring: ring.New(capacity)}
}

// Open returns a Handle: a per-session file-like view over the
// device with its own read cursor, mirroring aesd_open's private_data
// assignment (one handle, many opens, one shared backing ring).
func (d *Device) Open() *Handle {
	return &Handle{device: d}
}

// Write appends p to the in-progress command. When p ends a command
// (a '\n' has been seen), the accumulated command is moved into the
// ring, evicting the oldest retained command if the ring is full.
// This mirrors aesd_write's kmalloc_array/realloc-and-append dance
// without the two memory-fault-accounting bugs that dance is prone to
// in C: Go's append already tracks length and capacity correctly.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	d.accumulator = append(d.accumulator, p...)
	if d.accumulator[len(d.accumulator)-1] == '\n' {
		entry := ring.Entry{Data: d.accumulator}
		d.accumulator = nil
		d.ring.Add(entry)
	}
	return len(p), nil
}

// ReadAt copies up to len(p) bytes starting at the flattened byte
// offset off into p, returning io.EOF once off reaches the end of the
// retained stream. Mirrors aesd_read's
// aesd_circular_buffer_find_entry_offset_for_fpos + multi-entry copy
// loop.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if off < 0 {
		return 0, aesdsock.NewErrorWithErrno("Read", aesdsock.ErrCodeInvalidArgument, errnoEINVAL)
	}

	n := 0
	charOffset := int(off)
	for n < len(p) {
		entry, innerOff, ok := d.ring.Locate(charOffset)
		if !ok {
			break
		}
		avail := len(entry.Data) - innerOff
		copyLen := len(p) - n
		if copyLen > avail {
			copyLen = avail
		}
		copy(p[n:n+copyLen], entry.Data[innerOff:innerOff+copyLen])
		n += copyLen
		charOffset += copyLen
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// TotalSize returns the current flattened size of the retained
// stream, the bound fixed_size_llseek uses for SEEK_END/SEEK_CUR
// clamping in aesd_seek.
func (d *Device) TotalSize() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.ring.TotalSize())
}

// AdjustToCommand computes the flattened offset of byte
// commandOffset within command cmd (zero-indexed from the oldest
// retained command), per aesd_adjust_file_offset. It returns
// ErrCodeInvalidArgument if cmd or commandOffset is out of range.
//
// original_source's aesd_adjust_file_offset and aesd_seek both read
// through a local `device` pointer that is declared but never
// assigned from filp->private_data before first use — an
// uninitialized-pointer dereference preserved deliberately in the
// reference implementation. There is no analogous pointer-provenance
// bug to reproduce here: Device is always a valid receiver, so this
// method simply computes the position directly.
func (d *Device) AdjustToCommand(cmd, commandOffset uint32) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset, ok := d.ring.OffsetOfCommand(int(cmd))
	if !ok {
		return 0, aesdsock.NewErrorWithErrno("Seek", aesdsock.ErrCodeInvalidArgument, errnoEINVAL)
	}
	entry, ok := d.ring.At(int(cmd))
	if !ok || commandOffset >= uint32(len(entry.Data)) {
		return 0, aesdsock.NewErrorWithErrno("Seek", aesdsock.ErrCodeInvalidArgument, errnoEINVAL)
	}
	return int64(offset) + int64(commandOffset), nil
}

// Ioctl dispatches the single supported command, AESDCHAR_IOCSEEKTO.
// Unknown commands fail with ErrCodeUnsupported (-ENOTTY), matching
// aesd_ioctl's default case.
func (d *Device) Ioctl(cmd uint32, arg uapi.AesdSeekTo) (int64, error) {
	if cmd != uapi.AESDCHAR_IOCSEEKTO {
		return 0, aesdsock.NewErrorWithErrno("Ioctl", aesdsock.ErrCodeUnsupported, errnoENOTTY)
	}
	return d.AdjustToCommand(arg.WriteCmd, arg.WriteCmdOffset)
}

// Clear resets the device to empty, releasing all retained commands.
func (d *Device) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ring.Clear()
	d.accumulator = nil
}

var _ interfaces.Store = (*Handle)(nil)
