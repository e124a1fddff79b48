package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/anydict/numstore/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present. A field whose
// flag is unset deserializes to its zero value, which is always the correct
// semantic for this protocol (key 0, value 0, ok=false and count 0 encode
// fine as absence).
const (
	hasKey    byte = 1 << 0
	hasValue  byte = 1 << 1
	hasOk     byte = 1 << 2
	hasCount  byte = 1 << 3
	hasKeys   byte = 1 << 4
	hasValues byte = 1 << 5
	hasErr    byte = 1 << 6
	hasMeta   byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != 0 {
		flags |= hasKey
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Key)
		pos += 8
	}

	// Handle Value
	if msg.Value != 0 {
		flags |= hasValue
		result[pos] = msg.Value
		pos += 1
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Count
	if msg.Count != 0 {
		flags |= hasCount
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Count)
		pos += 8
	}

	// Handle Keys
	if msg.Keys != nil {
		flags |= hasKeys
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Keys)))
		pos += 4
		for _, k := range msg.Keys {
			binary.BigEndian.PutUint64(result[pos:pos+8], k)
			pos += 8
		}
	}

	// Handle Values
	if msg.Values != nil {
		flags |= hasValues
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Values)))
		pos += 4
		copy(result[pos:pos+len(msg.Values)], msg.Values)
		pos += len(msg.Values)
	}

	// Handle Err (the error code rides along with the message text)
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(errBytes)))
		pos += 4
		copy(result[pos:pos+len(errBytes)], errBytes)
		pos += len(errBytes)
		result[pos] = msg.ErrCode
		pos += 1
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Meta)))
		pos += 4
		copy(result[pos:pos+len(msg.Meta)], msg.Meta)
		pos += len(msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Key if present
	if flags&hasKey != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for key")
		}
		msg.Key = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Key = 0
	}

	// Read Value if present
	if flags&hasValue != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for value")
		}
		msg.Value = data[pos]
		pos += 1
	} else {
		msg.Value = 0
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for ok flag")
		}
		msg.Ok = data[pos] == 1
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Count if present
	if flags&hasCount != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for count")
		}
		msg.Count = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Count = 0
	}

	// Read Keys if present
	if flags&hasKeys != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for keys length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n*8 > len(data) {
			return fmt.Errorf("data too short for keys")
		}
		msg.Keys = make([]uint64, n)
		for i := 0; i < n; i++ {
			msg.Keys[i] = binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
		}
	} else {
		msg.Keys = nil
	}

	// Read Values if present
	if flags&hasValues != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for values length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n > len(data) {
			return fmt.Errorf("data too short for values")
		}
		msg.Values = make([]uint8, n)
		copy(msg.Values, data[pos:pos+n])
		pos += n
	} else {
		msg.Values = nil
	}

	// Read Err and ErrCode if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n+1 > len(data) {
			return fmt.Errorf("data too short for error")
		}
		msg.Err = string(data[pos : pos+n])
		pos += n
		msg.ErrCode = data[pos]
		pos += 1
	} else {
		msg.Err = ""
		msg.ErrCode = 0
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for meta length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n > len(data) {
			return fmt.Errorf("data too short for meta")
		}
		msg.Meta = make([]byte, n)
		copy(msg.Meta, data[pos:pos+n])
		pos += n
	} else {
		msg.Meta = nil
	}

	return nil
}

// sizeBytes computes the exact serialized size of a message so Serialize can
// allocate once.
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 2 // MsgType + flags
	if msg.Key != 0 {
		size += 8
	}
	if msg.Value != 0 {
		size += 1
	}
	if msg.Ok {
		size += 1
	}
	if msg.Count != 0 {
		size += 8
	}
	if msg.Keys != nil {
		size += 4 + len(msg.Keys)*8
	}
	if msg.Values != nil {
		size += 4 + len(msg.Values)
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) + 1
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	return size
}
