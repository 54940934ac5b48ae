package backend

import (
	"errors"
	"testing"
)

func TestScaleSDLAxis(t *testing.T) {
	if got := scaleSDLAxis(32767); got != 1 {
		t.Fatalf("scaleSDLAxis(32767) = %v, want 1", got)
	}
	if got := scaleSDLAxis(-32768); got != -1 {
		t.Fatalf("scaleSDLAxis(-32768) = %v, want clamp to -1", got)
	}
	if got := scaleSDLAxis(0); got != 0 {
		t.Fatalf("scaleSDLAxis(0) = %v, want 0", got)
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("permission denied")
	openErr := &OpenError{Device: "/dev/input/js0", Err: cause}
	if !errors.Is(openErr, cause) {
		t.Fatal("OpenError must unwrap to its cause")
	}

	readErr := &ReadError{Err: cause}
	if !errors.Is(readErr, cause) {
		t.Fatal("ReadError must unwrap to its cause")
	}

	var target *OpenError
	if !errors.As(error(openErr), &target) {
		t.Fatal("errors.As must match OpenError")
	}
}
