// Package ring implements the bounded FIFO of retained write commands
// that backs the character-device store: a fixed-capacity circular
// buffer of byte slices, addressable both by command index and by a
// flattened byte offset across all retained commands.
package ring

import "github.com/aesdsock/aesdsock/internal/constants"

// Entry is a single retained command.
type Entry struct {
	Data []byte
}

// Ring is a fixed-capacity circular buffer of Entry. Zero value is not
// usable; construct with New. Callers must serialize access externally
// (the character-device store holds the lock).
type Ring struct {
	entries  []Entry
	capacity int
	inOffs   int
	outOffs  int
	full     bool
}

// New creates an empty ring with the given capacity.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = constants.RingCapacity
	}
	return &Ring{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Add inserts entry at the current write position. If the ring is
// full, the oldest entry is evicted and returned so the caller can
// release any resources associated with it; ok is false when nothing
// was evicted.
func (r *Ring) Add(entry Entry) (evicted Entry, ok bool) {
	if r.full {
		evicted = r.entries[r.inOffs]
	}
	r.entries[r.inOffs] = entry
	r.inOffs = (r.inOffs + 1) % r.capacity

	if r.full {
		ok = true
		r.outOffs = (r.outOffs + 1) % r.capacity
		return evicted, ok
	}

	if r.inOffs == r.outOffs {
		r.full = true
	}
	return Entry{}, false
}

// Len returns the number of commands currently retained.
func (r *Ring) Len() int {
	if r.full {
		return r.capacity
	}
	if r.inOffs >= r.outOffs {
		return r.inOffs - r.outOffs
	}
	return r.capacity - r.outOffs + r.inOffs
}

// Clear resets the ring to empty, dropping all entries.
func (r *Ring) Clear() {
	for i := range r.entries {
		r.entries[i] = Entry{}
	}
	r.inOffs = 0
	r.outOffs = 0
	r.full = false
}

// TotalSize returns the sum of the sizes of all retained commands,
// i.e. the length of the flattened byte stream.
func (r *Ring) TotalSize() int {
	total := 0
	r.forEach(func(e Entry) { total += len(e.Data) })
	return total
}

// forEach walks the retained entries from oldest to newest.
func (r *Ring) forEach(fn func(Entry)) {
	if r.outOffs == r.inOffs && !r.full {
		return
	}
	i := r.outOffs
	for {
		fn(r.entries[i])
		i = (i + 1) % r.capacity
		if i == r.inOffs {
			break
		}
	}
}

// Locate translates a flattened byte offset into the entry that
// contains it and the byte offset within that entry. It returns
// ok=false if charOffset lies beyond the end of the retained stream.
func (r *Ring) Locate(charOffset int) (entry Entry, entryOffset int, ok bool) {
	if r.outOffs == r.inOffs && !r.full {
		return Entry{}, 0, false
	}

	i := r.outOffs
	for {
		e := r.entries[i]
		if charOffset < len(e.Data) {
			return e, charOffset, true
		}
		charOffset -= len(e.Data)
		i = (i + 1) % r.capacity
		if i == r.inOffs {
			break
		}
	}
	return Entry{}, 0, false
}

// At returns the command at zero-indexed position cmd, counting from
// the oldest retained command. ok is false if cmd is out of range of
// what is currently retained.
func (r *Ring) At(cmd int) (entry Entry, ok bool) {
	if cmd < 0 || cmd >= r.Len() {
		return Entry{}, false
	}
	return r.entries[(r.outOffs+cmd)%r.capacity], true
}

// OffsetOfCommand returns the flattened byte offset at which command
// cmd begins, i.e. the sum of the sizes of all commands retained
// before it.
func (r *Ring) OffsetOfCommand(cmd int) (offset int, ok bool) {
	if cmd < 0 || cmd >= r.Len() {
		return 0, false
	}
	for i := 0; i < cmd; i++ {
		e, _ := r.At(i)
		offset += len(e.Data)
	}
	return offset, true
}
