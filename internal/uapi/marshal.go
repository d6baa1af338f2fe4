package uapi

import "encoding/binary"

// MarshalSeekTo encodes an AesdSeekTo into its 8-byte wire form.
func MarshalSeekTo(s AesdSeekTo) []byte {
	buf := make([]byte, aesdSeekToSize)
	binary.LittleEndian.PutUint32(buf[0:4], s.WriteCmd)
	binary.LittleEndian.PutUint32(buf[4:8], s.WriteCmdOffset)
	return buf
}

// UnmarshalSeekTo decodes an AesdSeekTo from its 8-byte wire form.
func UnmarshalSeekTo(data []byte) (AesdSeekTo, error) {
	if len(data) < int(aesdSeekToSize) {
		return AesdSeekTo{}, ErrInsufficientData
	}
	return AesdSeekTo{
		WriteCmd:       binary.LittleEndian.Uint32(data[0:4]),
		WriteCmdOffset: binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// MarshalError reports a malformed ioctl payload.
type MarshalError string

func (e MarshalError) Error() string { return string(e) }

const ErrInsufficientData MarshalError = "insufficient data for unmarshaling"
