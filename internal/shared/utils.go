// Package shared provides utility functions for working with
// random strings and secure memory wiping.
package shared

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrEmptyAlphabet is returned by MakeRandString when no alphabet is given.
var ErrEmptyAlphabet = errors.New("empty alphabet")

// MakeRandString generates a random string of length n, each character drawn
// uniformly from alphabet. The randomness source is crypto/rand; characters
// are selected with rand.Int to avoid modulo bias.
func MakeRandString(n int, alphabet string) (string, error) {
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}
	if n < 0 {
		n = 0
	}

	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}

	return string(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords or cryptographic
// keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
