package secureshare

import (
	"fmt"

	"github.com/secureshare/client-go/internal/crypto"
)

// AccessCredentials are the freshly generated secrets for one share:
// the content key and IV used for encryption, the access PIN the backend
// looks the share up by, and the one-way key hash the backend stores to
// validate access attempts.
//
// Every call to newAccessCredentials yields independent values: no field
// is derivable from another except KeyHash and KeyID, which are one-way
// digests of the key. Only Key must stay secret; the PIN alone cannot
// decrypt anything.
type AccessCredentials struct {
	// Key is the 32-byte content key. Never transmitted to the server.
	Key []byte
	// IV is the 16-byte initialization vector. Uploaded with the ciphertext.
	IV []byte
	// PIN is the 4-digit access code.
	PIN string
	// KeyHash is the hex SHA-256 digest of Key, uploaded so the server
	// can validate receivers' keys without learning them.
	KeyHash string
	// KeyID is a short non-secret fingerprint of Key.
	KeyID string
}

// newAccessCredentials generates credentials for a new share. Any
// entropy-source failure aborts the whole generation; there is no
// fallback path that could produce a predictable key or PIN.
func newAccessCredentials() (*AccessCredentials, error) {
	key, err := crypto.ReadRandom(crypto.ContentKeySize)
	if err != nil {
		return nil, err
	}
	iv, err := crypto.ReadRandom(crypto.IVSize)
	if err != nil {
		return nil, err
	}
	pin, err := crypto.RandomDigits(crypto.PinLength)
	if err != nil {
		return nil, err
	}

	return &AccessCredentials{
		Key:     key,
		IV:      iv,
		PIN:     pin,
		KeyHash: crypto.KeyHash(key),
		KeyID:   crypto.KeyID(key),
	}, nil
}

// DecodeKey decodes a base64 content key as produced by Share.KeyBase64.
func DecodeKey(s string) ([]byte, error) {
	key, err := crypto.FromBase64(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != crypto.ContentKeySize {
		return nil, crypto.ErrInvalidKeySize
	}
	return key, nil
}

// validPin reports whether pin is exactly four decimal digits.
func validPin(pin string) bool {
	if len(pin) != crypto.PinLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
