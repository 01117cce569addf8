package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ClassProtocol, "protocol"},
		{ClassEngine, "engine"},
		{ClassInvalid, "invalid"},
		{ErrorClass(42), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := test.class.String(); got != test.expected {
				t.Errorf("expected %s, got %s", test.expected, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"malformed frame", ErrMalformedFrame, ClassProtocol},
		{"wrapped protocol", WrapProtocol(ErrTruncatedFrame, "FrameScanner", "Scan", "read frame"), ClassProtocol},
		{"name defined", ErrNameDefined, ClassInvalid},
		{"wrapped invalid", WrapInvalid(ErrInvalidDuration, "Play", "Apply", "parse duration"), ClassInvalid},
		{"plain wrapped invalid sentinel", fmt.Errorf("x: %w", ErrUnsupportedSampleRate), ClassInvalid},
		{"engine", EngineError("no such component"), ClassEngine},
		{"unknown", errors.New("boom"), ClassProtocol},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("expected %s, got %s for %v", test.expected, got, test.err)
			}
		})
	}
}

func TestWrapFormat(t *testing.T) {
	err := Wrap(ErrMalformedFrame, "Codec", "DecodeResponse", "parse frame")
	want := "Codec.DecodeResponse: parse frame failed: malformed frame"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, ErrMalformedFrame) {
		t.Error("wrapped error lost its sentinel")
	}
	if Wrap(nil, "a", "b", "c") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if !IsFatal(ErrEngineExited) {
		t.Error("engine exit is fatal")
	}
	if IsFatal(EngineError("bad")) {
		t.Error("engine-reported errors are not fatal")
	}
	if !IsInvalid(ErrNameDefined) {
		t.Error("duplicate name is a local validation error")
	}
}
