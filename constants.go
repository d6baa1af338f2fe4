package aesdsock

import "github.com/aesdsock/aesdsock/internal/constants"

// Re-exported tunables for callers that import only the root package.
const (
	RingCapacity      = constants.RingCapacity
	MessageBufferSize = constants.MessageBufferSize
	DefaultPort       = constants.DefaultPort
	DefaultFilePath   = constants.DefaultFilePath
	DefaultDevicePath = constants.DefaultDevicePath
)

// TimestampInterval is how often the timestamp producer appends a
// timestamp entry when the backing store is the local file.
const TimestampInterval = constants.TimestampInterval
