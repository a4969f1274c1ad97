package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	seed := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	a, err := DeriveMasterKey(seed, salt, 1000, MasterKeySize)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	b, err := DeriveMasterKey(seed, salt, 1000, MasterKeySize)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("same inputs should derive the same key")
	}
	if len(a) != MasterKeySize {
		t.Errorf("key length = %d, want %d", len(a), MasterKeySize)
	}
}

func TestDeriveMasterKey_SaltSensitivity(t *testing.T) {
	seed := []byte("correct horse battery staple")

	a, err := DeriveMasterKey(seed, []byte("salt-one-harmless"), 1000, MasterKeySize)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveMasterKey(seed, []byte("salt-two-harmless"), 1000, MasterKeySize)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a, b) {
		t.Error("different salts must derive different keys")
	}
}

// RFC 6070-style vector for PBKDF2-HMAC-SHA-256, cross-checked against
// the published SHA-256 test vectors for the PBKDF2 construction.
func TestDeriveMasterKey_KnownVector(t *testing.T) {
	key, err := DeriveMasterKey([]byte("password"), []byte("salt"), 1, 32)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}

	want := "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"
	if got := hex.EncodeToString(key); got != want {
		t.Errorf("derived key = %s, want %s", got, want)
	}
}

func TestDeriveMasterKey_InvalidInputs(t *testing.T) {
	tests := []struct {
		name       string
		seed, salt []byte
		iterations int
		length     int
	}{
		{"empty seed", nil, []byte("salt"), 1000, 32},
		{"empty salt", []byte("seed"), nil, 1000, 32},
		{"zero iterations", []byte("seed"), []byte("salt"), 0, 32},
		{"negative length", []byte("seed"), []byte("salt"), 1000, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveMasterKey(tt.seed, tt.salt, tt.iterations, tt.length)
			if !errors.Is(err, ErrKeyDerivation) {
				t.Errorf("DeriveMasterKey() error = %v, want ErrKeyDerivation", err)
			}
		})
	}
}

func TestKeyHash_Stable(t *testing.T) {
	key := make([]byte, ContentKeySize)
	for i := range key {
		key[i] = byte(i)
	}

	if KeyHash(key) != KeyHash(key) {
		t.Error("KeyHash should be stable for a fixed key")
	}
	if len(KeyHash(key)) != 64 {
		t.Errorf("KeyHash length = %d, want 64 hex chars", len(KeyHash(key)))
	}
}

func TestKeyID_TruncatedAndStable(t *testing.T) {
	key := make([]byte, ContentKeySize)
	key[0] = 0xAB

	id := KeyID(key)
	if len(id) != 2*KeyIDSize {
		t.Errorf("KeyID length = %d, want %d", len(id), 2*KeyIDSize)
	}
	if id != KeyID(key) {
		t.Error("KeyID should be stable for a fixed key")
	}

	other := make([]byte, ContentKeySize)
	other[0] = 0xCD
	if id == KeyID(other) {
		t.Error("different keys should have different IDs")
	}

	// The key ID is a prefix of the full key hash.
	if KeyHash(key)[:2*KeyIDSize] != id {
		t.Error("KeyID should be a truncation of KeyHash")
	}
}

func TestMasterKeyHash_DiffersFromKey(t *testing.T) {
	key, err := DeriveMasterKey([]byte("passphrase"), []byte("salt"), 100, MasterKeySize)
	if err != nil {
		t.Fatal(err)
	}

	hash := MasterKeyHash(key)
	if hash == hex.EncodeToString(key) {
		t.Error("hash must not equal the key encoding")
	}
}
