package common

import (
	"testing"

	"github.com/anydict/numstore/lib/store"
)

func TestParseStoreDef(t *testing.T) {
	tests := []struct {
		in      string
		want    StoreDef
		wantErr bool
	}{
		{in: "0=1000000", want: StoreDef{ID: 0, Capacity: 1000000, Mode: store.ModeStrict}},
		{in: "7=4096:lenient", want: StoreDef{ID: 7, Capacity: 4096, Mode: store.ModeLenient}},
		{in: "3=10:strict", want: StoreDef{ID: 3, Capacity: 10, Mode: store.ModeStrict}},
		{in: "nope", wantErr: true},
		{in: "x=100", wantErr: true},
		{in: "1=abc", wantErr: true},
		{in: "1=0", wantErr: true},
		{in: "1=100:sloppy", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseStoreDef(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStoreDef(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStoreDef(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStoreDef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMessageErrorRoundTrip(t *testing.T) {
	// typed store errors keep their code
	msg := NewDeleteResponse(store.NewError(store.ErrCKeyNotFound, "no value for key 3"))
	err := msg.GetError()
	if store.CodeOf(err) != store.ErrCKeyNotFound {
		t.Errorf("GetError code = %v, want KeyNotFound", store.CodeOf(err))
	}

	// plain errors come back untyped
	plain := NewErrorResponse("boom")
	if err := plain.GetError(); err == nil || store.CodeOf(err) != 0 {
		t.Errorf("GetError on plain error = %v, want untyped non-nil", err)
	}

	// no error
	if err := NewSetResponse(nil).GetError(); err != nil {
		t.Errorf("GetError on success = %v, want nil", err)
	}
}
