package security_test

import (
	"testing"

	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/security"
)

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	hasher := testHasher()

	hash, err := hasher.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty string")
	}

	if !hasher.Verify("very-secure-password", hash) {
		t.Fatal("Verify failed for the correct password")
	}
	if hasher.Verify("bogus-password", hash) {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher := testHasher()

	hash, err := hasher.Hash("")
	if err != nil {
		t.Fatalf("Hash must accept the empty string: %v", err)
	}
	if !hasher.Verify("", hash) {
		t.Fatal("Verify failed for empty password against its own hash")
	}
	if hasher.Verify("not-empty", hash) {
		t.Fatal("Verify matched a different password")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := testHasher()

	first, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("first hash: %v", err)
	}
	second, err := hasher.Hash("same-input")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password should differ by salt")
	}
	if !hasher.Verify("same-input", first) || !hasher.Verify("same-input", second) {
		t.Fatal("both salted hashes should verify")
	}
}

func TestVerifyCaseSensitive(t *testing.T) {
	hasher := testHasher()

	hash, err := hasher.Hash("Password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hasher.Verify("password", hash) {
		t.Fatal("verification must be case-sensitive")
	}
}

func TestVerifyMalformedHashIsFalse(t *testing.T) {
	hasher := testHasher()

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$bcrypt$something$else",
		"$argon2id$v=19$m=abc,t=1,p=1$salt$hash",
		"$argon2id$v=19$m=8,t=1,p=1$!!!$hash",
	} {
		if hasher.Verify("irrelevant", encoded) {
			t.Fatalf("expected false for malformed hash %q", encoded)
		}
	}
}
