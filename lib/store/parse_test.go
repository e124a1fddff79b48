package store

import (
	"testing"
)

// TestParseKey tests the typed classification of textual keys
func TestParseKey(t *testing.T) {
	if k, err := ParseKey("42"); err != nil || k != 42 {
		t.Errorf("ParseKey(42) = %d, %v", k, err)
	}
	if k, err := ParseKey("0"); err != nil || k != 0 {
		t.Errorf("ParseKey(0) = %d, %v", k, err)
	}

	// negative keys are a range violation, not a format one - including
	// magnitudes beyond what a signed 64-bit parse would accept
	for _, s := range []string{"-1", "-99999999999999999999"} {
		if _, err := ParseKey(s); CodeOf(err) != ErrCKeyOutOfRange {
			t.Errorf("ParseKey(%q): got %v, want KeyOutOfRange", s, err)
		}
	}

	for _, s := range []string{"abc", "1.5", "", "0x10", "-abc", "-", "-1.5"} {
		if _, err := ParseKey(s); CodeOf(err) != ErrCInvalidKeyFormat {
			t.Errorf("ParseKey(%q): got %v, want InvalidKeyFormat", s, err)
		}
	}
}

// TestParseValue tests value parsing and range enforcement
func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want uint8
	}{
		{"0", 0},
		{"1", 1},
		{"15", 15},
	}
	for _, c := range cases {
		if v, err := ParseValue(c.in); err != nil || v != c.want {
			t.Errorf("ParseValue(%q) = %d, %v, want %d", c.in, v, err, c.want)
		}
	}

	for _, s := range []string{"16", "-1", "100"} {
		if _, err := ParseValue(s); CodeOf(err) != ErrCInvalidValue {
			t.Errorf("ParseValue(%q): got %v, want InvalidValue", s, err)
		}
	}
	if _, err := ParseValue("x"); CodeOf(err) != ErrCInvalidValue {
		t.Errorf("ParseValue(x): got %v, want InvalidValue", err)
	}
}

// TestCodeOf tests error code extraction
func TestCodeOf(t *testing.T) {
	err := NewError(ErrCKeyNotFound, "test")
	if CodeOf(err) != ErrCKeyNotFound {
		t.Errorf("CodeOf = %v, want KeyNotFound", CodeOf(err))
	}
	if CodeOf(nil) != 0 {
		t.Errorf("CodeOf(nil) = %v, want 0", CodeOf(nil))
	}
}
