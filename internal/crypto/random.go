package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// randReader is the random source. It defaults to crypto/rand and can be
// overridden in tests to simulate entropy failure.
var randReader io.Reader = rand.Reader

// ReadRandom returns n cryptographically random bytes. A failing random
// source yields ErrEntropyFailure, never a partial or predictable value.
func ReadRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyFailure, err)
	}
	return b, nil
}

// RandomDigits returns a string of n uniformly distributed decimal digits.
// Each digit is drawn independently so short PINs carry no modulo bias.
func RandomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(randReader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEntropyFailure, err)
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
