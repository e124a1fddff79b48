package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anydict/numstore/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   uint64 `json:"key,omitempty"`   // Used for: Set, Get, Delete, Pop, Has
	Value uint8  `json:"value,omitempty"` // Used for: Set (request), Get, Pop (response)

	// Response only fields
	Ok      bool     `json:"ok,omitempty"`       // Used for: Get, Pop, Has responses (key held a value)
	Count   uint64   `json:"count,omitempty"`    // Used for: Len response
	Keys    []uint64 `json:"keys,omitempty"`     // Used for: Keys, Items responses
	Values  []uint8  `json:"values,omitempty"`   // Used for: Values, Items responses
	Err     string   `json:"err,omitempty"`      // Empty if no error, otherwise contains the error message
	ErrCode uint8    `json:"err_code,omitempty"` // Store error code if the error was a *store.Error

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info response (JSON-encoded StoreInfo)
}

// setErr records an error on a response message, preserving the typed store
// error code so the client can reconstruct it.
func (m *Message) setErr(err error) *Message {
	if err != nil {
		m.Err = err.Error()
		m.ErrCode = uint8(store.CodeOf(err))
	}
	return m
}

// GetError converts the wire error fields back into an error. Typed store
// errors survive the round trip with their code intact.
func (m *Message) GetError() error {
	if m.Err == "" {
		return nil
	}
	if m.ErrCode != 0 {
		return store.NewError(store.ErrCode(m.ErrCode), m.Err)
	}
	return errors.New(m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key uint64, value uint8) *Message {
	return &Message{
		MsgType: MsgTSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	return (&Message{MsgType: MsgTSet}).setErr(err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key uint64) *Message {
	return &Message{
		MsgType: MsgTGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value uint8, ok bool, err error) *Message {
	return (&Message{
		MsgType: MsgTGet,
		Value:   value,
		Ok:      ok,
	}).setErr(err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key uint64) *Message {
	return &Message{
		MsgType: MsgTDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return (&Message{MsgType: MsgTDelete}).setErr(err)
}

// NewPopRequest creates a new Pop request
func NewPopRequest(key uint64) *Message {
	return &Message{
		MsgType: MsgTPop,
		Key:     key,
	}
}

// NewPopResponse creates a new Pop response
func NewPopResponse(value uint8, ok bool, err error) *Message {
	return (&Message{
		MsgType: MsgTPop,
		Value:   value,
		Ok:      ok,
	}).setErr(err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key uint64) *Message {
	return &Message{
		MsgType: MsgTHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	return (&Message{
		MsgType: MsgTHas,
		Ok:      ok,
	}).setErr(err)
}

// NewLenRequest creates a new Len request
func NewLenRequest() *Message {
	return &Message{MsgType: MsgTLen}
}

// NewLenResponse creates a new Len response
func NewLenResponse(count uint64, err error) *Message {
	return (&Message{
		MsgType: MsgTLen,
		Count:   count,
	}).setErr(err)
}

// NewClearRequest creates a new Clear request
func NewClearRequest() *Message {
	return &Message{MsgType: MsgTClear}
}

// NewClearResponse creates a new Clear response
func NewClearResponse(err error) *Message {
	return (&Message{MsgType: MsgTClear}).setErr(err)
}

// NewKeysRequest creates a new Keys request
func NewKeysRequest() *Message {
	return &Message{MsgType: MsgTKeys}
}

// NewKeysResponse creates a new Keys response. The sequence is materialized
// on the server, keys arrive in ascending order.
func NewKeysResponse(keys []uint64, err error) *Message {
	return (&Message{
		MsgType: MsgTKeys,
		Keys:    keys,
	}).setErr(err)
}

// NewValuesRequest creates a new Values request
func NewValuesRequest() *Message {
	return &Message{MsgType: MsgTValues}
}

// NewValuesResponse creates a new Values response
func NewValuesResponse(values []uint8, err error) *Message {
	return (&Message{
		MsgType: MsgTValues,
		Values:  values,
	}).setErr(err)
}

// NewItemsRequest creates a new Items request
func NewItemsRequest() *Message {
	return &Message{MsgType: MsgTItems}
}

// NewItemsResponse creates a new Items response. Keys and Values are
// parallel slices in ascending key order.
func NewItemsResponse(keys []uint64, values []uint8, err error) *Message {
	return (&Message{
		MsgType: MsgTItems,
		Keys:    keys,
		Values:  values,
	}).setErr(err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{MsgType: MsgTInfo}
}

// NewInfoResponse creates a new Info response with the store info encoded
// as JSON in the meta field
func NewInfoResponse(info store.StoreInfo, err error) *Message {
	msg := &Message{MsgType: MsgTInfo}
	if err == nil {
		var marshalErr error
		msg.Meta, marshalErr = json.Marshal(info)
		err = marshalErr
	}
	return msg.setErr(err)
}

// InfoFromResponse decodes the store info carried by an Info response
func InfoFromResponse(msg *Message) (store.StoreInfo, error) {
	var info store.StoreInfo
	if err := json.Unmarshal(msg.Meta, &info); err != nil {
		return info, fmt.Errorf("decode store info: %w", err)
	}
	return info, nil
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTSet:
		return "set"
	case MsgTGet:
		return "get"
	case MsgTDelete:
		return "delete"
	case MsgTPop:
		return "pop"
	case MsgTHas:
		return "has"
	case MsgTLen:
		return "len"
	case MsgTClear:
		return "clear"
	case MsgTKeys:
		return "keys"
	case MsgTValues:
		return "values"
	case MsgTItems:
		return "items"
	case MsgTInfo:
		return "info"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "set":
		*t = MsgTSet
	case "get":
		*t = MsgTGet
	case "delete":
		*t = MsgTDelete
	case "pop":
		*t = MsgTPop
	case "has":
		*t = MsgTHas
	case "len":
		*t = MsgTLen
	case "clear":
		*t = MsgTClear
	case "keys":
		*t = MsgTKeys
	case "values":
		*t = MsgTValues
	case "items":
		*t = MsgTItems
	case "info":
		*t = MsgTInfo
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTSet    // Store a value for a key
	MsgTGet    // Get a value by key
	MsgTDelete // Delete a key
	MsgTPop    // Remove and return a value
	MsgTHas    // Check if a key holds a value
	MsgTLen    // Number of occupied keys
	MsgTClear  // Remove all values
	MsgTKeys   // All occupied keys, ascending
	MsgTValues // Values of all occupied keys
	MsgTItems  // (key, value) pairs of all occupied keys
	MsgTInfo   // Store metadata
)
