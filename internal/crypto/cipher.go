package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// The content cipher is AES-256-CBC with PKCS#7 padding and an
// HMAC-SHA-256 tag computed encrypt-then-MAC over iv || ciphertext.
// The encryption and MAC keys are derived from the content key with
// HKDF-SHA-256 so the raw content key is never used directly by either
// primitive. Output layout: ciphertext || tag.

// subkeys expands a content key into independent encryption and MAC keys.
func subkeys(key []byte) (encKey, macKey []byte, err error) {
	reader := hkdf.New(sha256.New, key, nil, []byte(hkdfContext))
	buf := make([]byte, 2*ContentKeySize)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, nil, fmt.Errorf("derive subkeys: %w", err)
	}
	return buf[:ContentKeySize], buf[ContentKeySize:], nil
}

// Encrypt encrypts plaintext with the given content key and IV.
// The IV must be freshly random per encryption; reuse under the same key
// leaks plaintext relationships.
func Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	if len(key) != ContentKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), ContentKeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize)
	}

	encKey, macKey, err := subkeys(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(ciphertext), nil
}

// Decrypt reverses Encrypt. Wrong key, corrupted ciphertext, and a bad
// tag are indistinguishable: all return ErrDecryptionFailed.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != ContentKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), ContentKeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize)
	}
	if len(ciphertext) < TagSize+aes.BlockSize {
		return nil, ErrDecryptionFailed
	}

	body := ciphertext[:len(ciphertext)-TagSize]
	tag := ciphertext[len(ciphertext)-TagSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	encKey, macKey, err := subkeys(key)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	padded := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, body)

	plaintext, ok := unpadPKCS7(padded, aes.BlockSize)
	if !ok {
		// Unreachable with a valid tag, but kept as a final guard.
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString encrypts a UTF-8 string and returns standard base64.
func EncryptString(plaintext string, key, iv []byte) (string, error) {
	ciphertext, err := Encrypt([]byte(plaintext), key, iv)
	if err != nil {
		return "", err
	}
	return ToBase64(ciphertext), nil
}

// DecryptString decrypts standard-base64 ciphertext to a UTF-8 string.
func DecryptString(encoded string, key, iv []byte) (string, error) {
	ciphertext, err := FromBase64(encoded)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	plaintext, err := Decrypt(ciphertext, key, iv)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}

// Zero overwrites b in place. Used to wipe plaintext buffers and key
// material on session teardown.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
