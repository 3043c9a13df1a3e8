package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// All tests use bcrypt.MinCost — the logic under test is identical at any
// cost, and MinCost keeps the suite fast.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(bcrypt.MinCost)
}

// =========================================================================
// HASH TESTS
// =========================================================================

func TestHash_ProducesBcryptHash(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %q, doesn't look like a bcrypt hash", hash)
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// Random salt means two hashes of the same password must differ
	h1, _ := ps.Hash("hunter2")
	h2, _ := ps.Hash("hunter2")

	if h1 == h2 {
		t.Error("Hash() produced identical hashes — salt is not random")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 73))
	if err == nil {
		t.Fatal("Hash() should reject passwords longer than 72 bytes")
	}
}

func TestNewPasswordService_ClampsInvalidCost(t *testing.T) {
	// An out-of-range cost must not panic or produce unusable hashes
	ps := NewPasswordService(999)

	hash, err := ps.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := ps.Verify(hash, "pw"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

// =========================================================================
// VERIFY TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("s3cret-pass")
	if err := ps.Verify(hash, "s3cret-pass"); err != nil {
		t.Errorf("Verify() error = %v for the correct password", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("s3cret-pass")
	err := ps.Verify(hash, "wrong-pass")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() error = %v, want ErrPasswordMismatch", err)
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	err := ps.Verify("not-a-bcrypt-hash", "whatever")
	if err == nil {
		t.Fatal("Verify() should error on a malformed hash")
	}
	if errors.Is(err, ErrPasswordMismatch) {
		t.Error("malformed hash should not be reported as a simple mismatch")
	}
}
