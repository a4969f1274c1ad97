package secureshare

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/secureshare/client-go/internal/crypto"
)

// RecipientKeys is a receiver's ML-KEM-768 keypair. A sender who knows
// the public key can seal a content key to it, removing the need for a
// confidential out-of-band channel: the sealed key can travel in the
// open, and only the holder of the secret key can recover it.
type RecipientKeys struct {
	kp *crypto.RecipientKeypair
}

// GenerateRecipientKeys creates a fresh keypair.
func GenerateRecipientKeys() (*RecipientKeys, error) {
	kp, err := crypto.GenerateRecipientKeypair()
	if err != nil {
		return nil, err
	}
	return &RecipientKeys{kp: kp}, nil
}

// PublicKey returns the base64 public key to hand to senders.
func (k *RecipientKeys) PublicKey() string {
	return k.kp.PublicKeyB64
}

// recipientKeysFile is the on-disk form of a keypair.
type recipientKeysFile struct {
	SecretKey string `json:"secret_key"` // base64
	PublicKey string `json:"public_key"` // base64
}

// ExportToFile writes the keypair, secret key included, to a 0600 file.
func (k *RecipientKeys) ExportToFile(path string) error {
	data, err := json.MarshalIndent(recipientKeysFile{
		SecretKey: crypto.ToBase64(k.kp.SecretKey),
		PublicKey: k.kp.PublicKeyB64,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write keypair file: %w", err)
	}
	return nil
}

// ImportRecipientKeysFromFile reads a keypair written by ExportToFile.
func ImportRecipientKeysFromFile(path string) (*RecipientKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file: %w", err)
	}

	var file recipientKeysFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse keypair file: %w", err)
	}

	secretKey, err := crypto.FromBase64(file.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("parse keypair file: %w", err)
	}
	publicKey, err := crypto.FromBase64URL(file.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("parse keypair file: %w", err)
	}

	kp, err := crypto.RecipientKeypairFromBytes(secretKey, publicKey)
	if err != nil {
		return nil, err
	}
	return &RecipientKeys{kp: kp}, nil
}

// SealedKey is a content key sealed to a recipient's public key. It is
// safe to transmit in the open.
type SealedKey struct {
	Encapsulation string `json:"encapsulation"` // base64
	Wrapped       string `json:"wrapped"`       // base64
}

// SealKeyFor seals the share's content key to a recipient public key.
// The share itself is unchanged; the sealed key is an additional way to
// deliver the same key.
func (s *Share) SealKeyFor(recipientPublicKeyB64 string) (*SealedKey, error) {
	publicKey, err := crypto.FromBase64URL(recipientPublicKeyB64)
	if err != nil {
		return nil, fmt.Errorf("parse recipient public key: %w", err)
	}

	sealed, err := crypto.SealKey(s.Key, publicKey)
	if err != nil {
		return nil, err
	}
	return &SealedKey{
		Encapsulation: crypto.ToBase64(sealed.Encapsulation),
		Wrapped:       crypto.ToBase64(sealed.Wrapped),
	}, nil
}

// OpenSealedKey recovers a content key sealed to this keypair.
func (k *RecipientKeys) OpenSealedKey(sealed *SealedKey) ([]byte, error) {
	encapsulation, err := crypto.FromBase64(sealed.Encapsulation)
	if err != nil {
		return nil, fmt.Errorf("parse sealed key: %w", err)
	}
	wrapped, err := crypto.FromBase64(sealed.Wrapped)
	if err != nil {
		return nil, fmt.Errorf("parse sealed key: %w", err)
	}

	return k.kp.OpenKey(&crypto.SealedKey{
		Encapsulation: encapsulation,
		Wrapped:       wrapped,
	})
}
