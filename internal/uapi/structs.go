package uapi

import "unsafe"

// AesdSeekTo names a byte offset inside a specific retained command,
// the payload for the AESDCHAR_IOCSEEKTO ioctl. write_cmd is the
// zero-indexed command to seek within (0 is the oldest retained
// command); write_cmd_offset is the byte offset within that command.
type AesdSeekTo struct {
	WriteCmd       uint32
	WriteCmdOffset uint32
}

const aesdSeekToSize = unsafe.Sizeof(AesdSeekTo{})

var _ [8]byte = [aesdSeekToSize]byte{}
