package dense

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/anydict/numstore/lib/store"
)

// saveBytes serializes a store into a byte slice for test manipulation
func saveBytes(t *testing.T, s store.IStore) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return buf.Bytes()
}

// TestSaveFormat pins the exact byte layout of the persisted form
func TestSaveFormat(t *testing.T) {
	s, _ := New(4, store.ModeLenient)
	s.Set(0, 1)
	s.Set(1, 2)
	s.Set(2, 3)

	raw := saveBytes(t, s)

	// 8B magic + 1B version + 8B capacity + 1B mode + 8B payloadLen + 2B payload
	if len(raw) != 28 {
		t.Fatalf("serialized length = %d, want 28", len(raw))
	}
	if string(raw[:8]) != magicNum {
		t.Errorf("magic = %q", raw[:8])
	}
	if raw[8] != formatVersion {
		t.Errorf("version byte = %d, want %d", raw[8], formatVersion)
	}
	if capacity := binary.LittleEndian.Uint64(raw[9:17]); capacity != 4 {
		t.Errorf("capacity = %d, want 4", capacity)
	}
	if raw[17] != uint8(store.ModeLenient) {
		t.Errorf("mode byte = %d, want %d", raw[17], store.ModeLenient)
	}
	if payloadLen := binary.LittleEndian.Uint64(raw[18:26]); payloadLen != 2 {
		t.Errorf("payloadLen = %d, want 2", payloadLen)
	}
	// slot0=1, slot1=2 -> 0x21; slot2=3, slot3=0 -> 0x03
	if raw[26] != 0x21 || raw[27] != 0x03 {
		t.Errorf("payload = %x %x, want 21 03", raw[26], raw[27])
	}
}

// TestLoadAdoptsMode tests that the persisted mode replaces the current one
func TestLoadAdoptsMode(t *testing.T) {
	src, _ := New(8, store.ModeLenient)
	raw := saveBytes(t, src)

	dst, _ := New(8, store.ModeStrict)
	if err := dst.Load(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// a lenient store swallows out-of-range operations
	if err := dst.Set(100, 1); err != nil {
		t.Errorf("store is not lenient after load: %v", err)
	}
	info, _ := dst.GetInfo()
	if info.Mode != "lenient" {
		t.Errorf("mode after load = %q, want lenient", info.Mode)
	}
}

// TestLoadCorrupt tests that malformed input is rejected as CorruptData and
// that the prior state survives every failed load
func TestLoadCorrupt(t *testing.T) {
	good, _ := New(6, store.ModeStrict)
	good.Set(3, 9)
	valid := saveBytes(t, good)

	corrupt := func(name string, mutate func([]byte) []byte) {
		t.Run(name, func(t *testing.T) {
			s, _ := New(6, store.ModeLenient) // CorruptData must error even in lenient mode
			s.Set(0, 5)

			raw := mutate(append([]byte(nil), valid...))
			err := s.Load(bytes.NewReader(raw))
			if store.CodeOf(err) != store.ErrCCorruptData {
				t.Fatalf("Load: got %v, want CorruptData", err)
			}

			// prior state untouched
			if s.Capacity() != 6 {
				t.Errorf("capacity changed to %d after failed load", s.Capacity())
			}
			if v, found, _ := s.Get(0); !found || v != 5 {
				t.Errorf("slot 0 = (%d, %t) after failed load, want (5, true)", v, found)
			}
			if n, _ := s.Len(); n != 1 {
				t.Errorf("Len = %d after failed load, want 1", n)
			}
		})
	}

	corrupt("BadMagic", func(raw []byte) []byte {
		raw[0] = 'X'
		return raw
	})
	corrupt("BadVersion", func(raw []byte) []byte {
		raw[8] = formatVersion + 1
		return raw
	})
	corrupt("BadModeByte", func(raw []byte) []byte {
		raw[17] = 9
		return raw
	})
	corrupt("ZeroCapacity", func(raw []byte) []byte {
		binary.LittleEndian.PutUint64(raw[9:17], 0)
		return raw
	})
	corrupt("PayloadLenMismatch", func(raw []byte) []byte {
		binary.LittleEndian.PutUint64(raw[18:26], 99)
		return raw
	})
	// a capacity whose byte length cannot be represented must be rejected
	// before any payload math, no matter what payload length it declares
	corrupt("HugeCapacity", func(raw []byte) []byte {
		binary.LittleEndian.PutUint64(raw[9:17], math.MaxUint64)
		binary.LittleEndian.PutUint64(raw[18:26], 0)
		return raw
	})
	corrupt("TruncatedHeader", func(raw []byte) []byte {
		return raw[:12]
	})
	corrupt("TruncatedPayload", func(raw []byte) []byte {
		return raw[:len(raw)-1]
	})
	corrupt("Empty", func(raw []byte) []byte {
		return nil
	})
}

// TestSaveFile tests atomic file persistence
func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.numstore")

	s, _ := New(10, store.ModeStrict)
	s.Set(9, 15)

	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	// no temporary file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file still exists after SaveFile")
	}

	// overwriting an existing file works (the rename path)
	s.Set(0, 1)
	if err := s.SaveFile(path); err != nil {
		t.Fatalf("SaveFile overwrite: %v", err)
	}

	restored, _ := New(1, store.ModeStrict)
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n, _ := restored.Len(); n != 2 {
		t.Errorf("restored Len = %d, want 2", n)
	}
}

// TestLoadFileMissing tests the error path for a nonexistent file
func TestLoadFileMissing(t *testing.T) {
	s, _ := New(4, store.ModeStrict)
	if err := s.LoadFile(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Error("LoadFile on missing file should fail")
	}
}
