// Package crypto implements the client-side cryptographic primitives for
// SecureShare: PBKDF2 master-key derivation, authenticated content
// encryption (AES-256-CBC with an HMAC-SHA-256 tag, encrypt-then-MAC),
// key hashing, and ML-KEM-768 sealing of content keys for out-of-band
// exchange.
//
// The server only ever sees ciphertext and one-way hashes; every key in
// this package stays on-device.
package crypto
