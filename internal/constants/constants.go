// Package constants holds the tunables shared across aesdsock packages.
package constants

import "time"

const (
	// RingCapacity is the number of commands retained by the bounded
	// FIFO (K in the design notes). original_source's
	// aesd-circular-buffer.c hardcodes this via
	// AESDCHAR_MAX_WRITE_OPERATIONS_SUPPORTED.
	RingCapacity = 10

	// MessageBufferSize is the per-connection framing buffer size.
	MessageBufferSize = 500

	// PlaybackChunkSize is the chunk size used when streaming the
	// store back to a client.
	PlaybackChunkSize = 500

	// DefaultPort is the TCP port the server binds.
	DefaultPort = 9000

	// DefaultListenBacklog is the minimum accept backlog.
	DefaultListenBacklog = 5

	// DefaultFilePath is the local-file backing store path.
	DefaultFilePath = "/var/tmp/aesdsocketdata"

	// DefaultDevicePath is the character-device backing store path.
	DefaultDevicePath = "/dev/aesdchar"
)

// TimestampInterval is how often the timestamp producer appends a
// timestamp entry to a file-backed store.
const TimestampInterval = 10 * time.Second

// ReapPause is the interval at which the supervisor's shutdown polls
// its workers for completion. It does not affect correctness, only how
// promptly finished workers are observed.
const ReapPause = 10 * time.Millisecond
