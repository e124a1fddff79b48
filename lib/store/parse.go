package store

import (
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Boundary Parsing
// --------------------------------------------------------------------------
//
// Keys and values arrive at the system boundary (CLI arguments, RPC payloads)
// as strings. Parsing is done once, here, with typed errors - the engines
// themselves only ever see uint64/uint8 and never re-validate formats.

// ParseKey converts a textual key to a uint64. A leading minus sign is
// classified as out-of-range (the key space starts at zero), any other
// non-numeric input as a format error. Range against a concrete capacity is
// checked by the store itself.
func ParseKey(s string) (uint64, error) {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		// any digit string after the minus is a negative key, no matter how
		// large - magnitude must not change the classification
		if isDigits(rest) {
			return 0, NewErrorf(ErrCKeyOutOfRange, "key %s is negative", s)
		}
		return 0, NewErrorf(ErrCInvalidKeyFormat, "key %q is not an integer", s)
	}
	k, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewErrorf(ErrCInvalidKeyFormat, "key %q is not an integer", s)
	}
	return k, nil
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseValue converts a textual value to a uint8 in [0, MaxValue].
func ParseValue(s string) (uint8, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, NewErrorf(ErrCInvalidValue, "value %q is not an integer", s)
	}
	if v < 0 || v > MaxValue {
		return 0, NewErrorf(ErrCInvalidValue, "value %d out of range [0, %d]", v, MaxValue)
	}
	return uint8(v), nil
}
