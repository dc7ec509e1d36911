// Package cryptox implements password hashing for account credentials.
//
// Hashes are stored in the tagged format dovecot understands: a scheme
// prefix in curly braces followed by the scheme's own encoding, e.g.
//
//	{BLF-CRYPT}$2a$10$N9qo8uLOickgx2ZMRZoMye...
//
// The tag makes the stored value self-describing, so the verification
// algorithm can change later without migrating existing rows.
package cryptox

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SchemeBLFCrypt is the dovecot password scheme name for bcrypt.
const SchemeBLFCrypt = "{BLF-CRYPT}"

// ErrUnknownScheme is returned by VerifyPassword when the stored hash does
// not carry a scheme tag this package can check.
var ErrUnknownScheme = errors.New("unknown password scheme")

// HashPassword hashes secret with bcrypt at the default cost and prefixes
// the result with the {BLF-CRYPT} scheme tag. bcrypt generates a fresh salt
// on every call, so hashing the same secret twice yields different strings.
func HashPassword(secret []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return SchemeBLFCrypt + string(hash), nil
}

// VerifyPassword checks secret against a tagged hash produced by
// HashPassword. The lookup path never calls this: the mail system compares
// hashes itself. It exists for tests and external tooling.
func VerifyPassword(tagged string, secret []byte) error {
	rest, ok := strings.CutPrefix(tagged, SchemeBLFCrypt)
	if !ok {
		return ErrUnknownScheme
	}
	return bcrypt.CompareHashAndPassword([]byte(rest), secret)
}
