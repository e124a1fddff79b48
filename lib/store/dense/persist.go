package dense

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/anydict/numstore/lib/nibble"
	"github.com/anydict/numstore/lib/store"
)

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Constants for the binary file format
const (
	magicNum      = "NUMSTOR\x00" // File format identifier
	formatVersion = 1             // Store format version
)

// Binary layout (little endian):
//
//	magic (8B) | version uint8 | capacity uint64 | mode uint8 |
//	payloadLen uint64 | payload (ceil(capacity/2) bytes)
//
// The payload is the raw nibble buffer, so a saved store costs 26 bytes of
// header plus half a byte per slot regardless of occupancy. The field order
// is fixed for cross-implementation compatibility.

// Save persists the store to the writer.
// (docu see interface.go)
func (d *denseImpl) Save(w io.Writer) error {
	metricSave.Inc()
	bw := bufio.NewWriterSize(w, 64*1024)

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(formatVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, d.buf.Capacity()); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(d.mode)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(d.buf.Bytes()))); err != nil {
		return err
	}

	// Write the packed slots
	if _, err := bw.Write(d.buf.Bytes()); err != nil {
		return err
	}

	return bw.Flush()
}

// Load restores the store from the reader. The loaded capacity and mode
// replace the current ones. Validation failures return ErrCCorruptData
// regardless of mode, and any failure leaves the prior state untouched:
// the new buffer is only swapped in after the whole payload parsed.
// (docu see interface.go)
func (d *denseImpl) Load(r io.Reader) error {
	metricLoad.Inc()
	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "header truncated: %v", err)
	}
	if string(magicBytes) != magicNum {
		return store.NewError(store.ErrCCorruptData, "invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "header truncated: %v", err)
	}
	if version != formatVersion {
		return store.NewErrorf(store.ErrCCorruptData,
			"unsupported version: %d (expected %d)", version, formatVersion)
	}

	// Read and verify capacity
	var capacity uint64
	if err := binary.Read(br, binary.LittleEndian, &capacity); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "header truncated: %v", err)
	}
	if capacity == 0 {
		return store.NewError(store.ErrCCorruptData, "capacity must be greater than zero")
	}
	if nibble.ByteLen(capacity) > math.MaxInt {
		return store.NewErrorf(store.ErrCCorruptData, "capacity %d too large", capacity)
	}

	// Read and verify mode
	var modeByte uint8
	if err := binary.Read(br, binary.LittleEndian, &modeByte); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "header truncated: %v", err)
	}
	if modeByte > uint8(store.ModeLenient) {
		return store.NewErrorf(store.ErrCCorruptData, "invalid mode byte: %d", modeByte)
	}

	// Read and verify payload length
	var payloadLen uint64
	if err := binary.Read(br, binary.LittleEndian, &payloadLen); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "header truncated: %v", err)
	}
	if payloadLen != nibble.ByteLen(capacity) {
		return store.NewErrorf(store.ErrCCorruptData,
			"payload length %d does not match capacity %d (expected %d)",
			payloadLen, capacity, nibble.ByteLen(capacity))
	}

	// Read the packed slots
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(br, payload); err != nil {
		return store.NewErrorf(store.ErrCCorruptData, "payload truncated: %v", err)
	}

	// Build the new state off to the side and swap it in only on full success
	buf, err := nibble.NewBuffer(capacity)
	if err != nil {
		return store.NewErrorf(store.ErrCInternalError, "create buffer: %v", err)
	}
	if err := buf.SetBytes(payload); err != nil {
		return store.NewErrorf(store.ErrCInternalError, "restore buffer: %v", err)
	}

	d.buf = buf
	d.mode = store.Mode(modeByte)
	d.occupied = buf.Occupied() // the one full scan the engine ever does
	d.logger = d.logger.With("capacity", capacity)
	return nil
}

// SaveFile persists the store to a file. The bytes are written to a
// temporary sibling first and moved into place with an atomic rename, so a
// crash mid-save never corrupts an existing file.
// (docu see interface.go)
func (d *denseImpl) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := d.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// LoadFile restores the store from a file written by SaveFile.
// (docu see interface.go)
func (d *denseImpl) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.Load(f)
}
