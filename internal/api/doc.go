// Package api implements the HTTP wire contract between the SecureShare
// client and the backend. The backend is opaque: it stores ciphertext,
// IVs, and one-way hashes, and it enforces PINs, expiry, view counts and
// device limits. Nothing in this package ever carries a decryption key.
package api
