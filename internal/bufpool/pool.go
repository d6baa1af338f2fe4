// Package bufpool provides a pooled byte slice for the fixed-size
// buffers every connection worker uses (message framing, playback
// chunks), avoiding a fresh allocation per
// accepted connection, collapsed to the one size class this domain
// actually needs.
package bufpool

import "sync/atomic"

const bufferSize = 500 // matches constants.MessageBufferSize

var pool = make(chan []byte, 256)
var allocated atomic.Uint64

// Get returns a buffer of exactly bufferSize bytes from the pool,
// allocating a fresh one if the pool is empty.
func Get() []byte {
	select {
	case b := <-pool:
		return b
	default:
		allocated.Add(1)
		return make([]byte, bufferSize)
	}
}

// Put returns buf to the pool if it matches the pool's buffer size;
// mismatched buffers are simply dropped for the GC to collect.
func Put(buf []byte) {
	if cap(buf) != bufferSize {
		return
	}
	buf = buf[:bufferSize]
	select {
	case pool <- buf:
	default:
	}
}

// Allocated returns the number of buffers allocated outside the pool
// (cache misses), for tests and diagnostics.
func Allocated() uint64 {
	return allocated.Load()
}
