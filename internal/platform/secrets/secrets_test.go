package secrets

import (
	"strings"
	"testing"

	dErrors "voicegate/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	first, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if first == second {
		t.Error("two generated secrets should not collide")
	}
	if len(first) < 40 {
		t.Errorf("secret too short: %d chars", len(first))
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("admin-token")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "admin-token" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := Verify("admin-token", hash); err != nil {
		t.Errorf("Verify with correct secret: %v", err)
	}

	err = Verify("wrong-token", hash)
	if err == nil {
		t.Fatal("Verify with wrong secret should fail")
	}
	if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		t.Errorf("mismatch should carry invalid input code, got %v", err)
	}
}

func TestHashEmptySecret(t *testing.T) {
	_, err := Hash("")
	if err == nil {
		t.Fatal("empty secret should be rejected")
	}
	if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		t.Errorf("expected invalid input code, got %v", err)
	}
}

func TestHashOverlongSecret(t *testing.T) {
	// bcrypt rejects inputs above 72 bytes.
	_, err := Hash(strings.Repeat("a", 100))
	if err == nil {
		t.Fatal("overlong secret should be rejected")
	}
	if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		t.Errorf("expected invalid input code, got %v", err)
	}
}
