package domainerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "account missing")
	if err.Error() != "account missing" {
		t.Fatalf("expected message, got %q", err.Error())
	}
	if !HasCode(err, CodeNotFound) {
		t.Fatal("expected CodeNotFound")
	}
	if HasCode(err, CodeInternal) {
		t.Fatal("did not expect CodeInternal")
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if Wrap(nil, CodeInternal, "ignored") != nil {
			t.Fatal("expected nil for nil cause")
		}
	})

	t.Run("wrapped error keeps cause in chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "store unavailable")

		if !errors.Is(err, cause) {
			t.Fatal("expected errors.Is to find the cause")
		}
		if got := err.Error(); got != "store unavailable: connection refused" {
			t.Fatalf("unexpected message: %q", got)
		}
		if !HasCode(err, CodeInternal) {
			t.Fatal("expected CodeInternal")
		}
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		inner := New(CodeNotFound, "row missing")
		outer := Wrap(inner, CodeInternal, "lookup failed")

		if !HasCode(outer, CodeInternal) {
			t.Fatal("expected outer code")
		}
		if !HasCode(outer, CodeNotFound) {
			t.Fatal("expected inner code to remain visible")
		}
	})
}

func TestIs(t *testing.T) {
	err := New(CodeUnauthorized, "no identity")
	if !Is(err, CodeUnauthorized) {
		t.Fatal("expected Is to match code")
	}
	if Is(fmt.Errorf("plain"), CodeUnauthorized) {
		t.Fatal("plain errors carry no code")
	}
}

func TestErrorsIsComparison(t *testing.T) {
	err := New(CodeUnauthorized, "session token has expired")

	if !errors.Is(err, New(CodeUnauthorized, "session token has expired")) {
		t.Fatal("expected match on code and message")
	}
	if !errors.Is(err, &Error{Code: CodeUnauthorized}) {
		t.Fatal("expected match on code alone when target has no message")
	}
	if errors.Is(err, New(CodeUnauthorized, "different message")) {
		t.Fatal("did not expect match on different message")
	}
	if errors.Is(err, New(CodeForbidden, "session token has expired")) {
		t.Fatal("did not expect match on different code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeValidation, "bad field")); got != CodeValidation {
		t.Fatalf("expected CodeValidation, got %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Fatalf("uncoded errors default to CodeInternal, got %q", got)
	}
	if got := CodeOf(fmt.Errorf("outer: %w", New(CodeConflict, "dup"))); got != CodeConflict {
		t.Fatalf("expected code through fmt wrapping, got %q", got)
	}
}
