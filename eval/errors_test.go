package eval

import (
	"errors"
	"fmt"
	"testing"
)

func TestLoadError_MessageAndUnwrap(t *testing.T) {
	inner := errors.New("bad integer")
	err := &LoadError{Row: 4, Err: inner}
	if got, want := err.Error(), "baseline load: row 4: bad integer"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, inner) {
		t.Error("LoadError should unwrap to its cause")
	}

	headerErr := &LoadError{Err: errors.New("missing column")}
	if got, want := headerErr.Error(), "baseline load: missing column"; got != want {
		t.Errorf("Error() without row = %q, want %q", got, want)
	}
}

func TestDecodeError_MessageAndUnwrap(t *testing.T) {
	inner := errors.New("unexpected token")
	err := &DecodeError{Line: 7, Err: inner}
	if got, want := err.Error(), "plan stream: line 7: unexpected token"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, inner) {
		t.Error("DecodeError should unwrap to its cause")
	}
}

func TestIndexRangeError_Message(t *testing.T) {
	err := &IndexRangeError{District: 9, Max: 4, Unit: "X/A"}
	if got, want := err.Error(), `district 9 exceeds configured maximum 4 (unit "X/A")`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorKinds_MatchThroughWrapping(t *testing.T) {
	// Errors wrapped with %w must stay matchable via errors.As.
	wrapped := fmt.Errorf("run failed: %w", &DecodeError{Line: 2, Err: errors.New("boom")})
	var decodeErr *DecodeError
	if !errors.As(wrapped, &decodeErr) {
		t.Fatal("errors.As failed to find DecodeError through wrapping")
	}
	if decodeErr.Line != 2 {
		t.Errorf("Line = %d, want 2", decodeErr.Line)
	}
}
