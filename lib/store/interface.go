package store

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplDense  Implementation = "dense"
	ImplSynced Implementation = "synced"
	ImplRPC    Implementation = "rpc"
)

// MaxValue is the largest value a store can hold for a key. A value of zero
// is not storable: zero marks an absent key.
const MaxValue = 15

// Mode controls how a store reacts to invalid operations.
type Mode uint8

const (
	// ModeStrict causes invalid operations to fail with a matching *Error.
	ModeStrict Mode = iota
	// ModeLenient causes invalid operations to be reported as a non-fatal
	// diagnostic and otherwise ignored (the operation returns zero values
	// and a nil error, state is left unchanged).
	ModeLenient
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "strict":
		return ModeStrict, nil
	case "lenient":
		return ModeLenient, nil
	default:
		return ModeStrict, fmt.Errorf("invalid mode: %s (must be strict or lenient)", s)
	}
}

// Feature represents store features as bit flags
type Feature uint64

const (
	FeatureSet     Feature = 1 << iota // Support for Set operations
	FeatureGet                         // Support for Get operations
	FeatureDelete                      // Support for Delete operations
	FeaturePop                         // Support for Pop operations
	FeatureHas                         // Support for Has operations
	FeatureIterate                     // Support for Keys/Values/Items operations
	FeatureClear                       // Support for Clear operations
	FeatureSave                        // Support for Save operations
	FeatureLoad                        // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeaturePop:
		return "Pop"
	case FeatureHas:
		return "Has"
	case FeatureIterate:
		return "Iterate"
	case FeatureClear:
		return "Clear"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

// StoreInfo describes a store instance. Occupied and SizeBytes reflect the
// state at the time of the GetInfo call.
type StoreInfo struct {
	Capacity          uint64         `json:"capacity"`
	Occupied          uint64         `json:"occupied"`
	Mode              string         `json:"mode"`
	SizeBytes         int            `json:"size_bytes"`
	StoreType         Implementation `json:"store_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata,omitempty"`
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for a fixed-capacity numeric store.
// Keys are integers in [0, Capacity()); values are integers in [1, MaxValue].
// A value of zero means the key is absent: writing zero deletes, and a key
// explicitly set to zero is indistinguishable from one never set. This is a
// documented property of the storage scheme, not an accident - the occupancy
// counter and iteration both rely on it.
//
// All write operations return only an error (nil on success), while read
// operations return the requested data along with an error (nil on success).
// In lenient mode invalid inputs never produce an error: the operation
// reports a diagnostic and returns zero values instead.
type IStore interface {
	// Set stores value for key. Setting a value of zero is equivalent to
	// Delete, except that it never fails on an absent key.
	Set(key uint64, value uint8) (err error)
	// Get returns the value for key. The boolean indicates whether the key
	// holds a non-zero value.
	Get(key uint64) (value uint8, found bool, err error)
	// Delete removes the value for key. Deleting an absent key fails with
	// ErrCKeyNotFound in strict mode.
	Delete(key uint64) (err error)
	// Pop removes and returns the value for key. The boolean indicates
	// whether the key held a value before the call.
	Pop(key uint64) (value uint8, found bool, err error)
	// Has returns whether key holds a non-zero value.
	Has(key uint64) (found bool, err error)

	// Len returns the number of keys holding a non-zero value. This is a
	// cached counter, never a scan.
	Len() (n uint64, err error)
	// IsEmpty returns whether the store holds no values.
	IsEmpty() (empty bool, err error)
	// Clear removes all values. The capacity is unchanged.
	Clear() (err error)

	// Keys returns a fresh sequence over all occupied keys in ascending
	// order. The sequence reflects the state at iteration time; the store
	// must not be mutated while a sequence is being consumed.
	Keys() (seq iter.Seq[uint64], err error)
	// Values returns a fresh sequence over the values of all occupied keys,
	// in ascending key order.
	Values() (seq iter.Seq[uint8], err error)
	// Items returns a fresh sequence over (key, value) pairs of all occupied
	// keys in ascending key order.
	Items() (seq iter.Seq2[uint64, uint8], err error)

	// Save writes the store state to w in the numstore binary format.
	Save(w io.Writer) (err error)
	// Load replaces the store state wholesale from r. On any error the
	// prior state is left untouched. The capacity becomes the loaded value.
	Load(r io.Reader) (err error)
	// SaveFile atomically writes the store state to a file.
	SaveFile(path string) (err error)
	// LoadFile replaces the store state from a file written by SaveFile.
	LoadFile(path string) (err error)

	// Capacity returns the fixed number of key slots.
	Capacity() uint64
	// GetInfo returns metadata about the store.
	GetInfo() (info StoreInfo, err error)
	// SupportsFeature checks if the implementation supports the specified
	// feature. Multiple features can be checked at once using bitwise OR.
	SupportsFeature(feature Feature) (ok bool)
	// Close releases resources held by the store.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// ErrCode classifies store errors.
type ErrCode uint8

const (
	ErrCInternalError        ErrCode = iota + 1 // Operation failed due to an internal error.
	ErrCUnsupportedOperation                    // Operation is not supported by the implementation.
	ErrCInvalidKeyFormat                        // Key input cannot be parsed as a non-negative integer.
	ErrCKeyOutOfRange                           // Key is negative or >= capacity.
	ErrCInvalidValue                            // Value is not an integer in [0, MaxValue].
	ErrCKeyNotFound                             // Delete on an already-absent key.
	ErrCCorruptData                             // Persisted bytes failed format validation.
)

func (c ErrCode) String() string {
	switch c {
	case ErrCInternalError:
		return "InternalError"
	case ErrCUnsupportedOperation:
		return "UnsupportedOperation"
	case ErrCInvalidKeyFormat:
		return "InvalidKeyFormat"
	case ErrCKeyOutOfRange:
		return "KeyOutOfRange"
	case ErrCInvalidValue:
		return "InvalidValue"
	case ErrCKeyNotFound:
		return "KeyNotFound"
	case ErrCCorruptData:
		return "CorruptData"
	default:
		return "Unknown"
	}
}

// Error is a custom error type that wraps an error code and a message.
type Error struct {
	Code ErrCode // The error code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with the given code and formatted message.
func NewErrorf(code ErrCode, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the error code of err, or zero if err is not a *Error.
func CodeOf(err error) ErrCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
