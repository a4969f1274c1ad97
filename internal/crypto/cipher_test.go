package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestEncrypt_Decrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"simple", []byte("hello world")},
		{"exact block", make([]byte, 16)},
		{"json", []byte(`{"foo": "bar", "num": 123}`)},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}},
		{"large", make([]byte, 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := randomBytes(t, ContentKeySize)
			iv := randomBytes(t, IVSize)

			ciphertext, err := Encrypt(tt.plaintext, key, iv)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			// CBC pads to a whole block, then the tag is appended.
			minLen := len(tt.plaintext) + 1 + TagSize
			if len(ciphertext) < minLen {
				t.Errorf("ciphertext length = %d, want >= %d", len(ciphertext), minLen)
			}

			decrypted, err := Decrypt(ciphertext, key, iv)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	key := randomBytes(t, ContentKeySize)
	iv := randomBytes(t, IVSize)

	ciphertext, err := Encrypt([]byte("sensitive payload"), key, iv)
	if err != nil {
		t.Fatal(err)
	}

	wrongKey := randomBytes(t, ContentKeySize)
	if _, err := Decrypt(ciphertext, wrongKey, iv); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecrypt_CorruptedCiphertext(t *testing.T) {
	key := randomBytes(t, ContentKeySize)
	iv := randomBytes(t, IVSize)

	ciphertext, err := Encrypt([]byte("sensitive payload"), key, iv)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flip ciphertext bit", func(ct []byte) []byte {
			out := append([]byte(nil), ct...)
			out[0] ^= 0x01
			return out
		}},
		{"flip tag bit", func(ct []byte) []byte {
			out := append([]byte(nil), ct...)
			out[len(out)-1] ^= 0x01
			return out
		}},
		{"truncated", func(ct []byte) []byte {
			return ct[:TagSize]
		}},
		{"empty", func(ct []byte) []byte {
			return nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decrypt(tt.mutate(ciphertext), key, iv); !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("Decrypt() error = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestDecrypt_WrongIV(t *testing.T) {
	key := randomBytes(t, ContentKeySize)
	iv := randomBytes(t, IVSize)

	ciphertext, err := Encrypt([]byte("sensitive payload"), key, iv)
	if err != nil {
		t.Fatal(err)
	}

	wrongIV := randomBytes(t, IVSize)
	if _, err := Decrypt(ciphertext, key, wrongIV); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong IV error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncrypt_InvalidSizes(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		ivLen   int
		wantErr error
	}{
		{"short key", 16, IVSize, ErrInvalidKeySize},
		{"long key", 64, IVSize, ErrInvalidKeySize},
		{"empty key", 0, IVSize, ErrInvalidKeySize},
		{"short iv", ContentKeySize, 12, ErrInvalidIVSize},
		{"empty iv", ContentKeySize, 0, ErrInvalidIVSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			iv := make([]byte, tt.ivLen)

			if _, err := Encrypt([]byte("x"), key, iv); !errors.Is(err, tt.wantErr) {
				t.Errorf("Encrypt() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := Decrypt(make([]byte, 64), key, iv); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncryptString_DecryptString_RoundTrip(t *testing.T) {
	key := randomBytes(t, ContentKeySize)
	iv := randomBytes(t, IVSize)

	encoded, err := EncryptString("hello", key, iv)
	if err != nil {
		t.Fatalf("EncryptString() error = %v", err)
	}

	decoded, err := DecryptString(encoded, key, iv)
	if err != nil {
		t.Fatalf("DecryptString() error = %v", err)
	}
	if decoded != "hello" {
		t.Errorf("DecryptString() = %q, want %q", decoded, "hello")
	}
}

func TestDecryptString_InvalidBase64(t *testing.T) {
	key := make([]byte, ContentKeySize)
	iv := make([]byte, IVSize)

	if _, err := DecryptString("not base64!!!", key, iv); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("DecryptString() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	key := randomBytes(t, ContentKeySize)
	iv := randomBytes(t, IVSize)
	plaintext := []byte("same input, same output")

	a, err := Encrypt(plaintext, key, iv)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt(plaintext, key, iv)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encrypt() with fixed key and IV should be deterministic")
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("b[%d] = %d, want 0", i, v)
		}
	}
}

func TestUnpadPKCS7_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not block aligned", make([]byte, 15)},
		{"zero pad byte", append(make([]byte, 15), 0)},
		{"pad too large", append(make([]byte, 15), 17)},
		{"inconsistent pad", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := unpadPKCS7(tt.data, 16); ok {
				t.Error("unpadPKCS7() = ok, want failure")
			}
		})
	}
}
