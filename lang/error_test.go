package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestError_Is(t *testing.T) {
	derived := ErrNoActiveContext.With(slog.Int("line", 3))

	if !errors.Is(derived, ErrNoActiveContext) {
		t.Error("derived error does not match its sentinel")
	}

	if !errors.Is(derived, ErrStructural) {
		t.Error("derived error does not match the broader sentinel")
	}

	if errors.Is(derived, ErrContextAlreadyOpen) {
		t.Error("derived error matches a sibling sentinel")
	}

	if errors.Is(ErrStructural, ErrNoActiveContext) {
		t.Error("broad sentinel matches a refinement")
	}
}

func TestError_Wrap(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF).With(slog.Int("line", 1))

	if !errors.Is(err, ErrReadInput) {
		t.Error("expected ErrReadInput")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped cause")
	}

	if got := err.Error(); got != "failed to read input: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapError(t *testing.T) {
	if got := WrapError(ErrUnknownVariable); got != ErrUnknownVariable {
		t.Error("WrapError did not return the existing *Error")
	}

	plain := errors.New("plain")

	wrapped := WrapError(plain)
	if !errors.Is(wrapped, plain) || wrapped.Error() != "plain" {
		t.Errorf("WrapError(plain) = %v", wrapped)
	}

	// An outer wrapper keeps its message and the sentinel it wraps.
	outer := fmt.Errorf("compile aborted: %w", ErrSnapshotLimit)

	wrapped = WrapError(outer)
	if wrapped.Error() != "compile aborted: snapshot limit exceeded" {
		t.Errorf("WrapError(outer).Error() = %q", wrapped.Error())
	}

	if !errors.Is(wrapped, ErrSnapshotLimit) {
		t.Error("WrapError(outer) lost the wrapped sentinel")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrUnknownVariable.With(slog.String("name", "v"))

	v := err.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("expected group, got %v", v.Kind())
	}

	attrs := v.Group()
	if len(attrs) != 2 || attrs[0].Key != "error" || attrs[1].Key != "name" {
		t.Errorf("unexpected attrs: %v", attrs)
	}

	// With does not modify the receiver.
	if len(ErrUnknownVariable.Attrs()) != 0 {
		t.Error("sentinel was modified")
	}
}
