package errors

import (
	"strings"
	"testing"
)

func TestRecoverConvertsPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "Fit")
		panic("index out of range")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected an error from the recovered panic")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if panicErr.Operation != "Fit" {
		t.Errorf("Operation = %q, want %q", panicErr.Operation, "Fit")
	}
	if !strings.Contains(panicErr.StackTrace, "recovery_test.go") {
		t.Error("stack trace should reference the panicking call site")
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Errorf("message should carry the panic value: %v", err)
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	sentinel := New("fit failed")
	fn := func() (err error) {
		defer Recover(&err, "Fit")
		err = sentinel
		panic("boom")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !Is(err, sentinel) {
		t.Error("the original error should remain unwrappable")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("message should mention the panic: %v", err)
	}
}

func TestRecoverNoPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "Predict")
		return nil
	}
	if err := fn(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
