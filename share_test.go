package secureshare

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/secureshare/client-go/internal/crypto"
)

func testShare(t *testing.T) *Share {
	t.Helper()
	creds, err := newAccessCredentials()
	if err != nil {
		t.Fatalf("newAccessCredentials() error = %v", err)
	}
	return &Share{
		ContentID:   "content-1",
		PIN:         creds.PIN,
		Key:         creds.Key,
		IV:          creds.IV,
		KeyHash:     creds.KeyHash,
		KeyID:       creds.KeyID,
		ContentKind: KindText,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestShare_ExportImportRoundTrip(t *testing.T) {
	share := testShare(t)
	path := filepath.Join(t.TempDir(), "share.json")

	if err := share.ExportToFile(path); err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("share file permissions = %o, want 0600", perm)
		}
	}

	restored, err := ImportShareFromFile(path)
	if err != nil {
		t.Fatalf("ImportShareFromFile() error = %v", err)
	}
	if restored.PIN != share.PIN {
		t.Errorf("PIN = %q, want %q", restored.PIN, share.PIN)
	}
	if !bytes.Equal(restored.Key, share.Key) {
		t.Error("key did not survive the round trip")
	}
	if !bytes.Equal(restored.IV, share.IV) {
		t.Error("IV did not survive the round trip")
	}
	if restored.KeyHash != share.KeyHash {
		t.Errorf("key hash = %q, want %q", restored.KeyHash, share.KeyHash)
	}
	if restored.ContentKind != share.ContentKind {
		t.Errorf("content kind = %q, want %q", restored.ContentKind, share.ContentKind)
	}
}

func TestImportShareFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := ImportShareFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("imported a missing file")
	}

	garbage := filepath.Join(dir, "garbage.json")
	os.WriteFile(garbage, []byte("{not json"), 0600)
	if _, err := ImportShareFromFile(garbage); err == nil {
		t.Error("imported malformed JSON")
	}

	badPin := testShare(t)
	badPin.PIN = "12"
	path := filepath.Join(dir, "badpin.json")
	if err := badPin.ExportToFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportShareFromFile(path); err != ErrInvalidPin {
		t.Errorf("bad PIN import error = %v, want ErrInvalidPin", err)
	}

	badKey := testShare(t)
	badKey.Key = badKey.Key[:8]
	path = filepath.Join(dir, "badkey.json")
	if err := badKey.ExportToFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportShareFromFile(path); err == nil {
		t.Error("imported a share with a truncated key")
	}
}

func TestShare_Wipe(t *testing.T) {
	share := testShare(t)
	key := share.Key

	share.Wipe()

	if share.Key != nil {
		t.Error("key still referenced after Wipe")
	}
	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed", i)
		}
	}
}

func TestDestructionProof_Verify(t *testing.T) {
	destroyedAt := time.Now().UTC().Truncate(time.Second)
	proof := &DestructionProof{
		CertificateID: "cert-1",
		ContentID:     "content-1",
		Reason:        "sender_terminated",
		DestroyedAt:   destroyedAt,
		ProofHash:     ProofHash("cert-1", "content-1", "sender_terminated", destroyedAt),
		Signature:     "sig",
	}
	if err := proof.Verify(); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestDestructionProof_Verify_Invalid(t *testing.T) {
	destroyedAt := time.Now().UTC().Truncate(time.Second)
	valid := func() *DestructionProof {
		return &DestructionProof{
			CertificateID: "cert-1",
			ContentID:     "content-1",
			Reason:        "sender_terminated",
			DestroyedAt:   destroyedAt,
			ProofHash:     ProofHash("cert-1", "content-1", "sender_terminated", destroyedAt),
			Signature:     "sig",
		}
	}

	tests := []struct {
		name   string
		mutate func(*DestructionProof)
	}{
		{"tampered hash", func(p *DestructionProof) { p.ProofHash = "deadbeef" }},
		{"replayed content ID", func(p *DestructionProof) { p.ContentID = "other-content" }},
		{"changed reason", func(p *DestructionProof) { p.Reason = "expired" }},
		{"missing signature", func(p *DestructionProof) { p.Signature = "" }},
		{"missing certificate ID", func(p *DestructionProof) { p.CertificateID = "" }},
		{"zero timestamp", func(p *DestructionProof) { p.DestroyedAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof := valid()
			tt.mutate(proof)
			if err := proof.Verify(); err != ErrInvalidProof {
				t.Errorf("Verify() error = %v, want ErrInvalidProof", err)
			}
		})
	}
}

func TestProofHash_Deterministic(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := ProofHash("c", "id", "r", at)
	b := ProofHash("c", "id", "r", at)
	if a != b {
		t.Error("proof hash is not deterministic")
	}
	if a == ProofHash("c", "id2", "r", at) {
		t.Error("proof hash ignores the content ID")
	}
	if len(a) != 64 {
		t.Errorf("proof hash length = %d, want 64 hex chars", len(a))
	}

	// The hash binds the wall-clock second, not the in-memory location.
	if a != ProofHash("c", "id", "r", at.In(time.FixedZone("X", 3600))) {
		t.Error("proof hash depends on the time zone representation")
	}
}

func TestShare_KeyBase64(t *testing.T) {
	share := testShare(t)
	decoded, err := crypto.FromBase64(share.KeyBase64())
	if err != nil {
		t.Fatalf("FromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, share.Key) {
		t.Error("KeyBase64 does not round-trip to the key")
	}
}
