package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	base := errors.New("short read")
	err := Wrap(ErrDecode, "loading", "unpack segment", "segment 3", base)
	if !errors.Is(err, ErrDecode) {
		t.Fatal("expected decode marker")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause")
	}
	if !strings.Contains(err.Error(), "loading: unpack segment: segment 3") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "writing", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("nil marker should default to transient")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Wrap(ErrTransient, "writing", "", "disk busy", nil)) {
		t.Fatal("transient should be retryable")
	}
	if !IsRetryable(Wrap(ErrTimeout, "deriving", "", "", nil)) {
		t.Fatal("timeout should be retryable")
	}
	if IsRetryable(Wrap(ErrValidation, "loading", "", "bad header", nil)) {
		t.Fatal("validation should not be retryable")
	}
	if IsRetryable(errors.New("unclassified")) {
		t.Fatal("unclassified errors should not be retryable")
	}
}
