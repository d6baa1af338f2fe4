package chardev

import (
	"io"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/uapi"
)

// Handle is a per-connection open of a Device, satisfying
// interfaces.Store. It carries its own read cursor the way a kernel
// file struct carries its own f_pos across a single open/release.
type Handle struct {
	device *Device
	pos    int64
	mode   AccessMode
	open   bool
}

// WithAccessMode returns h configured with the given access mode.
// Defaults to AccessReadWrite, the mode the socket worker always uses
// (it both appends and plays back through the same connection).
func (h *Handle) WithAccessMode(mode AccessMode) *Handle {
	h.mode = mode
	return h
}

// OpenAppendRead marks the handle open for combined append+read use,
// mirroring aesd_open's role: there is no per-open allocation to
// perform, only bookkeeping so Append/ReadLine/Close can detect use
// after close. Opening write-only clears the device, resetting
// total_size() to 0 and discarding any in-progress accumulator, the
// same way aesd_open's O_WRONLY path drops retained state.
func (h *Handle) OpenAppendRead() error {
	h.open = true
	h.pos = 0
	if h.mode == AccessWriteOnly {
		h.device.Clear()
	}
	return nil
}

// Append writes p to the device's in-progress command.
func (h *Handle) Append(p []byte) error {
	if !h.open {
		return aesdsock.NewError("Append", aesdsock.ErrCodeClosed, "handle not open")
	}
	if !h.mode.allowsWrite() {
		return aesdsock.NewErrorWithErrno("Append", aesdsock.ErrCodeInvalidArgument, errnoEPERM)
	}
	_, err := h.device.Write(p)
	return err
}

// Seek repositions the handle's read cursor to an absolute flattened
// offset, bounded by the device's current total size (fixed_size_llseek).
func (h *Handle) Seek(offset int64) error {
	if !h.open {
		return aesdsock.NewError("Seek", aesdsock.ErrCodeClosed, "handle not open")
	}
	total := h.device.TotalSize()
	if offset < 0 || offset > total {
		return aesdsock.NewErrorWithErrno("Seek", aesdsock.ErrCodeInvalidArgument, errnoEINVAL)
	}
	h.pos = offset
	return nil
}

// ReadLine reads up to len(buf) bytes from the device starting at the
// handle's current cursor, advancing the cursor by the number of
// bytes read. Returns io.EOF once the cursor reaches the end of the
// retained stream, matching aesd_read's end-of-buffer behavior.
func (h *Handle) ReadLine(buf []byte) (int, error) {
	if !h.open {
		return 0, aesdsock.NewError("ReadLine", aesdsock.ErrCodeClosed, "handle not open")
	}
	if !h.mode.allowsRead() {
		return 0, aesdsock.NewErrorWithErrno("ReadLine", aesdsock.ErrCodeInvalidArgument, errnoEPERM)
	}

	n, err := h.device.ReadAt(buf, h.pos)
	h.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, aesdsock.WrapError("ReadLine", err)
	}
	return n, err
}

// Ioctl executes AESDCHAR_IOCSEEKTO against the shared device and, on
// success, repositions this handle's cursor to the resulting offset —
// skipping the normal rewind-to-zero a plain write performs.
func (h *Handle) Ioctl(seek uapi.AesdSeekTo) error {
	if !h.open {
		return aesdsock.NewError("Ioctl", aesdsock.ErrCodeClosed, "handle not open")
	}
	pos, err := h.device.Ioctl(uapi.AESDCHAR_IOCSEEKTO, seek)
	if err != nil {
		return err
	}
	h.pos = pos
	return nil
}

// Close releases the handle. The device itself persists across
// closes, the way /dev/aesdchar's retained commands outlive any one
// open file descriptor.
func (h *Handle) Close() error {
	h.open = false
	return nil
}
