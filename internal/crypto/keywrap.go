package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"
)

// Sealed-key exchange protects the out-of-band channel itself: the
// receiver publishes an ML-KEM-768 public key, the sender encapsulates a
// shared secret to it and wraps the content key under a key derived from
// that secret. The raw content key then never travels in the clear, even
// out-of-band.

// RecipientKeypair is an ML-KEM-768 keypair owned by a receiver.
type RecipientKeypair struct {
	// PublicKey is the raw ML-KEM-768 public key bytes.
	PublicKey []byte
	// SecretKey is the raw ML-KEM-768 secret key bytes.
	SecretKey []byte
	// PublicKeyB64 is the public key encoded as URL-safe base64.
	PublicKeyB64 string
}

// GenerateRecipientKeypair creates a new ML-KEM-768 keypair.
func GenerateRecipientKeypair() (*RecipientKeypair, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyFailure, err)
	}

	// MarshalBinary never fails for keys produced by GenerateKeyPair.
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return &RecipientKeypair{
		PublicKey:    pubBytes,
		SecretKey:    privBytes,
		PublicKeyB64: ToBase64URL(pubBytes),
	}, nil
}

// RecipientKeypairFromBytes reconstructs a keypair from raw bytes.
func RecipientKeypairFromBytes(secretKey, publicKey []byte) (*RecipientKeypair, error) {
	if len(secretKey) != MLKEMSecretKeySize {
		return nil, ErrInvalidSecretKeySize
	}
	if len(publicKey) != MLKEMPublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}

	var priv mlkem768.PrivateKey
	if err := priv.Unpack(secretKey); err != nil {
		return nil, ErrInvalidSecretKeySize
	}

	return &RecipientKeypair{
		PublicKey:    publicKey,
		SecretKey:    secretKey,
		PublicKeyB64: ToBase64URL(publicKey),
	}, nil
}

// SealedKey is a content key wrapped to a recipient's public key.
// Layout of Wrapped: iv || ciphertext || tag, under the wrap key.
type SealedKey struct {
	// Encapsulation is the ML-KEM-768 ciphertext carrying the shared secret.
	Encapsulation []byte
	// Wrapped is the content key encrypted under the derived wrap key.
	Wrapped []byte
}

// wrapKey derives the AES key used to wrap a content key from an ML-KEM
// shared secret.
func wrapKey(sharedSecret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, []byte(sealContext))
	key := make([]byte, ContentKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive wrap key: %w", err)
	}
	return key, nil
}

// SealKey wraps a content key to a recipient's ML-KEM-768 public key.
func SealKey(contentKey, recipientPublicKey []byte) (*SealedKey, error) {
	if len(contentKey) != ContentKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(contentKey), ContentKeySize)
	}
	if len(recipientPublicKey) != MLKEMPublicKeySize {
		return nil, ErrInvalidPublicKeySize
	}

	var pub mlkem768.PublicKey
	pub.Unpack(recipientPublicKey)

	encapsulation := make([]byte, MLKEMCiphertextSize)
	sharedSecret := make([]byte, MLKEMSharedKeySize)
	pub.EncapsulateTo(encapsulation, sharedSecret, nil)
	defer Zero(sharedSecret)

	key, err := wrapKey(sharedSecret)
	if err != nil {
		return nil, err
	}
	defer Zero(key)

	iv, err := ReadRandom(IVSize)
	if err != nil {
		return nil, err
	}

	wrapped, err := Encrypt(contentKey, key, iv)
	if err != nil {
		return nil, err
	}

	return &SealedKey{
		Encapsulation: encapsulation,
		Wrapped:       append(iv, wrapped...),
	}, nil
}

// OpenKey recovers a content key sealed to this keypair.
func (k *RecipientKeypair) OpenKey(sealed *SealedKey) ([]byte, error) {
	if sealed == nil || len(sealed.Encapsulation) != MLKEMCiphertextSize {
		return nil, ErrInvalidSealedKey
	}
	if len(sealed.Wrapped) < IVSize+TagSize {
		return nil, ErrInvalidSealedKey
	}

	var priv mlkem768.PrivateKey
	if err := priv.Unpack(k.SecretKey); err != nil {
		return nil, ErrInvalidSecretKeySize
	}

	sharedSecret := make([]byte, MLKEMSharedKeySize)
	priv.DecapsulateTo(sharedSecret, sealed.Encapsulation)
	defer Zero(sharedSecret)

	key, err := wrapKey(sharedSecret)
	if err != nil {
		return nil, err
	}
	defer Zero(key)

	iv := sealed.Wrapped[:IVSize]
	contentKey, err := Decrypt(sealed.Wrapped[IVSize:], key, iv)
	if err != nil {
		return nil, ErrInvalidSealedKey
	}
	if len(contentKey) != ContentKeySize {
		return nil, ErrInvalidSealedKey
	}
	return contentKey, nil
}
