// Package nibble implements a fixed-size buffer of 4-bit slots packed two per
// byte. It is the storage primitive of the dense store: slot i lives in byte
// i/2, even slots occupy the low nibble and odd slots the high nibble. This
// convention (together with little-endian framing in the persistence layer)
// is fixed so that serialized buffers are portable between implementations.
//
// The buffer performs its own bounds and value-range checks so that it can
// never touch memory outside its backing slice, but it knows nothing about
// keys, occupancy or modes - that bookkeeping lives in the store packages.
package nibble

import (
	"fmt"
	"math"
)

// Constants for the packing scheme
const (
	// MaxValue is the largest value a slot can hold (4 bits).
	MaxValue = 15

	// SlotsPerByte is the number of logical slots packed into one byte.
	SlotsPerByte = 2
)

// ByteLen returns the number of backing bytes needed for the given number
// of slots. The split form never overflows, not even at the top of the
// uint64 range.
func ByteLen(capacity uint64) uint64 {
	return capacity/SlotsPerByte + capacity%SlotsPerByte
}

// Buffer is a fixed-capacity sequence of 4-bit slots. The backing slice is
// allocated zero-filled at construction and never resized.
//
// Thread-safety: a Buffer is not safe for concurrent use. The owning store
// is expected to provide synchronization if needed.
type Buffer struct {
	capacity uint64
	bytes    []byte
}

// NewBuffer allocates a zero-filled buffer with the given number of slots.
// The capacity must be greater than zero.
func NewBuffer(capacity uint64) (*Buffer, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("nibble: capacity must be greater than zero")
	}
	byteLen := ByteLen(capacity)
	if byteLen > math.MaxInt {
		return nil, fmt.Errorf("nibble: capacity %d exceeds the addressable byte length", capacity)
	}
	return &Buffer{
		capacity: capacity,
		bytes:    make([]byte, byteLen),
	}, nil
}

// Capacity returns the number of logical slots.
func (b *Buffer) Capacity() uint64 {
	return b.capacity
}

// Get returns the value of slot i.
func (b *Buffer) Get(i uint64) (uint8, error) {
	if i >= b.capacity {
		return 0, fmt.Errorf("nibble: slot %d out of range [0, %d)", i, b.capacity)
	}
	return b.get(i), nil
}

// Set stores v in slot i, leaving the neighboring nibble untouched.
func (b *Buffer) Set(i uint64, v uint8) error {
	if i >= b.capacity {
		return fmt.Errorf("nibble: slot %d out of range [0, %d)", i, b.capacity)
	}
	if v > MaxValue {
		return fmt.Errorf("nibble: value %d out of range [0, %d]", v, MaxValue)
	}
	b.set(i, v)
	return nil
}

// get extracts the nibble for slot i. Bounds are the caller's responsibility.
func (b *Buffer) get(i uint64) uint8 {
	byt := b.bytes[i/SlotsPerByte]
	if i%SlotsPerByte == 1 {
		return byt >> 4
	}
	return byt & 0x0f
}

// set writes the nibble for slot i. Bounds and range are the caller's
// responsibility.
func (b *Buffer) set(i uint64, v uint8) {
	pos := i / SlotsPerByte
	if i%SlotsPerByte == 1 {
		b.bytes[pos] = b.bytes[pos]&0x0f | v<<4
	} else {
		b.bytes[pos] = b.bytes[pos]&0xf0 | v
	}
}

// Reset zero-fills the buffer in one pass.
func (b *Buffer) Reset() {
	clear(b.bytes)
}

// Bytes returns the backing byte slice. The slice is shared with the buffer;
// callers must treat it as read-only (it is handed out for serialization).
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

// SetBytes replaces the backing bytes wholesale. The length of p must match
// the buffer's byte length exactly; the bytes are copied, not aliased.
func (b *Buffer) SetBytes(p []byte) error {
	if len(p) != len(b.bytes) {
		return fmt.Errorf("nibble: byte length mismatch: got %d, need %d", len(p), len(b.bytes))
	}
	copy(b.bytes, p)
	return nil
}

// Occupied counts the slots holding a non-zero value. O(capacity); the store
// keeps a live counter and only calls this after loading a buffer wholesale.
func (b *Buffer) Occupied() uint64 {
	var count uint64
	for i, byt := range b.bytes {
		if byt == 0 {
			continue
		}
		if byt&0x0f != 0 {
			count++
		}
		// the high nibble of the last byte is padding for odd capacities
		if byt>>4 != 0 && (b.capacity%SlotsPerByte == 0 || i < len(b.bytes)-1) {
			count++
		}
	}
	return count
}
