package chardev

import "syscall"

// errno values the device's ioctl/seek paths can return. Named here
// rather than referencing syscall directly at each call site so the
// mapping to aesdsock.ErrorCode stays in one place.
const (
	errnoEINVAL = syscall.EINVAL
	errnoEFAULT = syscall.EFAULT
	errnoENOTTY = syscall.ENOTTY
	errnoEPERM  = syscall.EPERM
)

// AccessMode names the access intent a Handle was opened with.
// original_source's aesd_read/aesd_write each mask filp->f_flags with
// O_ACCMODE and compare against a single exclusive mode (O_WRONLY for
// read, O_RDONLY for write) — which rejects O_WRONLY-opened readers
// and O_RDONLY-opened writers but silently permits O_RDWR for both,
// regardless of which operation is actually being guarded against.
// That permitted/rejected combination is preserved here as an explicit
// enum compared directly, rather than implied by a bitmask comparison.
type AccessMode int

const (
	AccessReadWrite AccessMode = iota
	AccessReadOnly
	AccessWriteOnly
)

func (m AccessMode) allowsRead() bool  { return m != AccessWriteOnly }
func (m AccessMode) allowsWrite() bool { return m != AccessReadOnly }
