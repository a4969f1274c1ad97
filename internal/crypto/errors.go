package crypto

import "errors"

var (
	// ErrEntropyFailure is returned when the system random source fails.
	// There is deliberately no fallback: a predictable key is worse than
	// no key.
	ErrEntropyFailure = errors.New("entropy source failure")

	// ErrKeyDerivation is returned when master-key derivation is given
	// invalid inputs.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrDecryptionFailed is returned when decryption fails for any
	// reason: wrong key, corrupted ciphertext, or a bad authentication
	// tag. The causes are indistinguishable to the caller.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when a key has the wrong size.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when an IV has the wrong size.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrInvalidPublicKeySize is returned when a recipient public key has
	// the wrong size.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidSecretKeySize is returned when a recipient secret key has
	// the wrong size.
	ErrInvalidSecretKeySize = errors.New("invalid secret key size")

	// ErrInvalidSealedKey is returned when a sealed content key is
	// malformed or fails to open.
	ErrInvalidSealedKey = errors.New("invalid sealed key")
)
