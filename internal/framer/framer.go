// Package framer reassembles newline-terminated messages out of a
// stream of chunked reads, and recognizes the one textual command the
// socket server intercepts rather than writing through: the
// AESDCHAR_IOCSEEKTO seek request.
//
// Grounded on original_source/server/connection_info.c's receive
// loop (recv into a fixed-size chunk, append to an accumulator,
// repeat until a '\n' appears) generalized so a message spanning
// multiple chunks, or a chunk containing multiple messages, both
// reassemble correctly.
package framer

import (
	"bytes"
	"strconv"

	"github.com/aesdsock/aesdsock/internal/constants"
)

// ChunkSize is the size of each underlying recv/read call, matching
// connection_info.h's message_buffer[500].
const ChunkSize = constants.MessageBufferSize

// seekPrefix and seekCommandLen implement an exact structural check:
// compare the first 19 characters, then verify total length; positions
// 19 and 21 hold the single ASCII decimal digits.
const (
	seekPrefix     = "AESDCHAR_IOCSEEKTO:"
	seekCommandLen = 23 // len(seekPrefix) + "D,D\n"
)

// Framer accumulates bytes across repeated reads and yields complete
// newline-terminated messages as they become available.
type Framer struct {
	buf []byte
}

// New returns an empty Framer.
func New() *Framer {
	return &Framer{}
}

// Feed appends a freshly-read chunk (at most ChunkSize bytes, though
// Feed does not enforce this) to the accumulator.
func (f *Framer) Feed(chunk []byte) {
	f.buf = append(f.buf, chunk...)
}

// Next extracts the next complete newline-terminated message from the
// accumulator, if one is available. ok is false if no '\n' has been
// seen yet; callers should Feed more data and retry.
func (f *Framer) Next() (message []byte, ok bool) {
	idx := bytes.IndexByte(f.buf, '\n')
	if idx < 0 {
		return nil, false
	}
	message = append([]byte(nil), f.buf[:idx+1]...)
	f.buf = f.buf[idx+1:]
	return message, true
}

// Pending reports whether any unterminated bytes remain buffered.
func (f *Framer) Pending() bool {
	return len(f.buf) > 0
}

// SeekCommand holds a parsed AESDCHAR_IOCSEEKTO:X,Y request.
type SeekCommand struct {
	WriteCmd       uint32
	WriteCmdOffset uint32
}

// ParseSeekCommand reports whether line is exactly the literal
// AESDCHAR_IOCSEEKTO:X,Y\n command (single ASCII decimal digits for
// X and Y), returning the parsed coordinate if so.
func ParseSeekCommand(line []byte) (SeekCommand, bool) {
	if len(line) != seekCommandLen {
		return SeekCommand{}, false
	}
	if string(line[:len(seekPrefix)]) != seekPrefix {
		return SeekCommand{}, false
	}
	if line[len(seekPrefix)+1] != ',' || line[len(seekPrefix)+3] != '\n' {
		return SeekCommand{}, false
	}

	xDigit := line[len(seekPrefix)]
	yDigit := line[len(seekPrefix)+2]
	x, err := strconv.ParseUint(string(xDigit), 10, 32)
	if err != nil {
		return SeekCommand{}, false
	}
	y, err := strconv.ParseUint(string(yDigit), 10, 32)
	if err != nil {
		return SeekCommand{}, false
	}

	return SeekCommand{WriteCmd: uint32(x), WriteCmdOffset: uint32(y)}, true
}
