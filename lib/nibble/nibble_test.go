package nibble

import (
	"math"
	"testing"
)

// TestNewBuffer tests buffer allocation and sizing
func TestNewBuffer(t *testing.T) {
	if _, err := NewBuffer(0); err == nil {
		t.Error("NewBuffer(0) should return an error")
	}

	cases := []struct {
		capacity uint64
		byteLen  int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{6, 3},
		{7, 4},
		{100, 50},
	}

	for _, c := range cases {
		buf, err := NewBuffer(c.capacity)
		if err != nil {
			t.Fatalf("NewBuffer(%d) returned error: %v", c.capacity, err)
		}
		if buf.Capacity() != c.capacity {
			t.Errorf("Capacity() = %d, want %d", buf.Capacity(), c.capacity)
		}
		if len(buf.Bytes()) != c.byteLen {
			t.Errorf("capacity %d: byte length = %d, want %d", c.capacity, len(buf.Bytes()), c.byteLen)
		}
	}
}

// TestByteLenExtremes tests the byte length arithmetic at the top of the
// uint64 range, where the naive (capacity+1)/2 form wraps around
func TestByteLenExtremes(t *testing.T) {
	cases := []struct {
		capacity uint64
		byteLen  uint64
	}{
		{1, 1},
		{2, 1},
		{math.MaxUint64 - 1, 1<<63 - 1},
		{math.MaxUint64, 1 << 63},
	}
	for _, c := range cases {
		if got := ByteLen(c.capacity); got != c.byteLen {
			t.Errorf("ByteLen(%d) = %d, want %d", c.capacity, got, c.byteLen)
		}
	}

	// a capacity whose byte length cannot back a slice must be refused, not
	// silently truncated to an empty buffer
	if buf, err := NewBuffer(math.MaxUint64); err == nil {
		t.Errorf("NewBuffer(MaxUint64) succeeded with %d backing bytes, want error", len(buf.Bytes()))
	}
}

// TestGetSet tests that slots round trip and neighbors stay untouched
func TestGetSet(t *testing.T) {
	buf, err := NewBuffer(10)
	if err != nil {
		t.Fatal(err)
	}

	// all slots start at zero
	for i := uint64(0); i < 10; i++ {
		v, err := buf.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) returned error: %v", i, err)
		}
		if v != 0 {
			t.Errorf("fresh buffer: slot %d = %d, want 0", i, v)
		}
	}

	// write a distinct value to every slot
	for i := uint64(0); i < 10; i++ {
		if err := buf.Set(i, uint8(i%16)); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	for i := uint64(0); i < 10; i++ {
		v, _ := buf.Get(i)
		if v != uint8(i%16) {
			t.Errorf("slot %d = %d, want %d", i, v, i%16)
		}
	}

	// overwriting one slot must not disturb its byte-neighbor
	buf2, _ := NewBuffer(4)
	buf2.Set(0, 15)
	buf2.Set(1, 7)
	buf2.Set(0, 1)
	if v, _ := buf2.Get(1); v != 7 {
		t.Errorf("neighbor slot changed: got %d, want 7", v)
	}
	if v, _ := buf2.Get(0); v != 1 {
		t.Errorf("overwritten slot: got %d, want 1", v)
	}
}

// TestBounds tests index and value range enforcement
func TestBounds(t *testing.T) {
	buf, _ := NewBuffer(6)

	if _, err := buf.Get(6); err == nil {
		t.Error("Get(capacity) should fail")
	}
	if err := buf.Set(6, 1); err == nil {
		t.Error("Set(capacity) should fail")
	}
	if err := buf.Set(0, 16); err == nil {
		t.Error("Set with value 16 should fail")
	}
	if err := buf.Set(0, MaxValue); err != nil {
		t.Errorf("Set with MaxValue should succeed: %v", err)
	}
	if err := buf.Set(5, 1); err != nil {
		t.Errorf("Set(capacity-1) should succeed: %v", err)
	}
}

// TestReset tests that Reset zero-fills every slot
func TestReset(t *testing.T) {
	buf, _ := NewBuffer(9)
	for i := uint64(0); i < 9; i++ {
		buf.Set(i, 5)
	}

	buf.Reset()

	for i := uint64(0); i < 9; i++ {
		if v, _ := buf.Get(i); v != 0 {
			t.Errorf("slot %d = %d after Reset, want 0", i, v)
		}
	}
}

// TestOccupied tests the non-zero slot count, including odd capacities
func TestOccupied(t *testing.T) {
	buf, _ := NewBuffer(7)

	if buf.Occupied() != 0 {
		t.Errorf("fresh buffer Occupied() = %d, want 0", buf.Occupied())
	}

	buf.Set(0, 3)
	buf.Set(1, 1)
	buf.Set(6, 15)
	if buf.Occupied() != 3 {
		t.Errorf("Occupied() = %d, want 3", buf.Occupied())
	}

	buf.Set(1, 0)
	if buf.Occupied() != 2 {
		t.Errorf("Occupied() = %d after clearing a slot, want 2", buf.Occupied())
	}
}

// TestSetBytes tests wholesale replacement of the backing bytes
func TestSetBytes(t *testing.T) {
	buf, _ := NewBuffer(4)

	if err := buf.SetBytes([]byte{0x21}); err == nil {
		t.Error("SetBytes with wrong length should fail")
	}

	// slot0=1, slot1=2, slot2=3, slot3=0
	if err := buf.SetBytes([]byte{0x21, 0x03}); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}

	want := []uint8{1, 2, 3, 0}
	for i, w := range want {
		if v, _ := buf.Get(uint64(i)); v != w {
			t.Errorf("slot %d = %d, want %d", i, v, w)
		}
	}

	// the copy must not alias the input slice
	p := []byte{0x00, 0x00}
	buf.SetBytes(p)
	p[0] = 0xff
	if v, _ := buf.Get(0); v != 0 {
		t.Errorf("SetBytes aliased the input slice")
	}
}
