package secureshare

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/secureshare/client-go/internal/api"
	"github.com/secureshare/client-go/internal/crypto"
)

// Share is the sender's record of an uploaded piece of content: the PIN
// the receiver looks it up by and the content key that decrypts it. The
// key exists only here and wherever the sender delivers it; the backend
// holds its hash at most.
type Share struct {
	ContentID   string      `json:"content_id"`
	PIN         string      `json:"pin"`
	Key         []byte      `json:"key"`
	IV          []byte      `json:"iv"`
	KeyHash     string      `json:"key_hash"`
	KeyID       string      `json:"key_id"`
	ContentKind ContentKind `json:"content_kind"`
	OneTime     bool        `json:"one_time"`
	ExpiryTime  time.Time   `json:"expiry_time,omitzero"`
	CreatedAt   time.Time   `json:"created_at"`
}

// KeyBase64 returns the content key in the encoding the receiver passes
// to View after decoding.
func (s *Share) KeyBase64() string {
	return crypto.ToBase64(s.Key)
}

// Wipe zeroes the content key and IV. The Share is unusable afterwards.
func (s *Share) Wipe() {
	crypto.Zero(s.Key)
	s.Key = nil
	crypto.Zero(s.IV)
	s.IV = nil
}

// ExportToFile writes the share, key included, to a 0600 file. The file
// is as sensitive as the plaintext; use it only to hand the share to
// another tool on the same machine.
func (s *Share) ExportToFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal share: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write share file: %w", err)
	}
	return nil
}

// ImportShareFromFile reads a share previously written by ExportToFile.
func ImportShareFromFile(path string) (*Share, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read share file: %w", err)
	}

	var share Share
	if err := json.Unmarshal(data, &share); err != nil {
		return nil, fmt.Errorf("parse share file: %w", err)
	}
	if !validPin(share.PIN) {
		return nil, ErrInvalidPin
	}
	if len(share.Key) != crypto.ContentKeySize {
		return nil, crypto.ErrInvalidKeySize
	}
	return &share, nil
}

// ShareStatus is the backend's view of a share's lifecycle, available to
// the sender without consuming a view.
type ShareStatus struct {
	AccessMode      AccessMode
	Views           int
	DeviceLimit     int
	ExpiryTime      time.Time // zero for one-time shares
	CreatedAt       time.Time
	LastAccessed    time.Time // zero if never accessed
	DevicesAccessed int
	IsActive        bool
}

func newShareStatus(result *api.StatusResult) *ShareStatus {
	status := &ShareStatus{
		AccessMode:      AccessMode(result.AccessMode),
		Views:           result.Views,
		DeviceLimit:     result.DeviceLimit,
		CreatedAt:       result.CreatedAt,
		DevicesAccessed: result.DevicesAccessed,
		IsActive:        result.IsActive,
	}
	if result.ExpiryTime != nil {
		status.ExpiryTime = *result.ExpiryTime
	}
	if result.LastAccessed != nil {
		status.LastAccessed = *result.LastAccessed
	}
	return status
}

// DestructionProof certifies that the backend destroyed a share. The
// proof hash binds the certificate to the content, the reason and the
// destruction time, so a certificate cannot be replayed for different
// content.
type DestructionProof struct {
	CertificateID string
	ContentID     string
	Reason        string
	DestroyedAt   time.Time
	ProofHash     string
	Signature     string
	Metadata      map[string]string
}

func newDestructionProof(result *api.DestructionProof) *DestructionProof {
	return &DestructionProof{
		CertificateID: result.CertificateID,
		ContentID:     result.ContentID,
		Reason:        result.Reason,
		DestroyedAt:   result.DestroyedAt,
		ProofHash:     result.ProofHash,
		Signature:     result.Signature,
		Metadata:      result.Metadata,
	}
}

// Verify checks the certificate's internal consistency: all required
// fields present and the proof hash matching the bound fields.
func (p *DestructionProof) Verify() error {
	if p.CertificateID == "" || p.ContentID == "" || p.Signature == "" || p.DestroyedAt.IsZero() {
		return ErrInvalidProof
	}
	expected := ProofHash(p.CertificateID, p.ContentID, p.Reason, p.DestroyedAt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(p.ProofHash)) != 1 {
		return ErrInvalidProof
	}
	return nil
}

// ProofHash computes the digest a destruction certificate must carry.
func ProofHash(certificateID, contentID, reason string, destroyedAt time.Time) string {
	sum := sha256.Sum256([]byte(
		certificateID + "|" + contentID + "|" + reason + "|" + destroyedAt.UTC().Format(time.RFC3339),
	))
	return hex.EncodeToString(sum[:])
}
