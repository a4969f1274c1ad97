package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveMasterKey stretches a passphrase seed into a master key using
// PBKDF2-HMAC-SHA-256. The derivation is deterministic for a fixed
// (seed, salt, iterations, length) tuple; any change to the salt yields
// an unrelated key.
func DeriveMasterKey(seed, salt []byte, iterations, length int) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty seed", ErrKeyDerivation)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrKeyDerivation)
	}
	if iterations <= 0 || length <= 0 {
		return nil, fmt.Errorf("%w: iterations and length must be positive", ErrKeyDerivation)
	}
	return pbkdf2.Key(seed, salt, iterations, length, sha256.New), nil
}

// MasterKeyHash returns the hex-encoded SHA-256 digest of a master key.
// Only this hash is ever persisted; the key itself is not.
func MasterKeyHash(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// KeyHash returns the hex-encoded SHA-256 digest of a content key. The
// server stores it to validate access attempts without learning the key.
func KeyHash(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// KeyID returns a short, non-secret fingerprint of a content key, stable
// for a given key.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:KeyIDSize])
}
