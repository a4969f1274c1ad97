package secureshare

import (
	"fmt"
	"time"

	"github.com/secureshare/client-go/internal/api"
	"github.com/secureshare/client-go/internal/crypto"
)

// ContentKind is the closed set of content kinds a share can carry.
type ContentKind string

const (
	KindText     ContentKind = "text"
	KindImage    ContentKind = "image"
	KindPDF      ContentKind = "pdf"
	KindVideo    ContentKind = "video"
	KindAudio    ContentKind = "audio"
	KindDocument ContentKind = "document"
)

// ParseContentKind validates a content-kind string from the wire.
func ParseContentKind(s string) (ContentKind, error) {
	switch kind := ContentKind(s); kind {
	case KindText, KindImage, KindPDF, KindVideo, KindAudio, KindDocument:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// AccessMode distinguishes time-bounded from single-view shares.
type AccessMode string

const (
	// AccessTimeBased content stays available until its expiry time.
	AccessTimeBased AccessMode = AccessMode(api.AccessModeTimeBased)
	// AccessOneTime content is destroyed after its first view.
	AccessOneTime AccessMode = AccessMode(api.AccessModeOneTime)
)

// AccessGrant is the backend's response to a successful access: the
// ciphertext plus the policy the viewing session must enforce. A grant
// is consumed by Client.View and is not persisted beyond the session.
type AccessGrant struct {
	ContentID      string
	Ciphertext     []byte
	IV             []byte
	ViewsRemaining int
	DeviceLimit    int
	CurrentDevices int
	AccessMode     AccessMode
	ExpiryTime     time.Time // zero for one-time shares
	ContentKind    ContentKind
	FileName       string
	FileSize       int64
	MimeType       string
	SessionToken   string
}

// newAccessGrant materializes a grant from the wire payload.
func newAccessGrant(result *api.AccessResult) (*AccessGrant, error) {
	ciphertext, err := crypto.FromBase64(result.Content)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	iv, err := crypto.FromBase64(result.IV)
	if err != nil {
		return nil, fmt.Errorf("decode IV: %w", err)
	}

	kind, err := ParseContentKind(result.ContentType)
	if err != nil {
		return nil, err
	}

	grant := &AccessGrant{
		ContentID:      result.ContentID,
		Ciphertext:     ciphertext,
		IV:             iv,
		ViewsRemaining: result.ViewsRemaining,
		DeviceLimit:    result.DeviceLimit,
		CurrentDevices: result.CurrentDevices,
		AccessMode:     AccessMode(result.AccessMode),
		ContentKind:    kind,
		FileName:       result.FileName,
		FileSize:       result.FileSize,
		MimeType:       result.MimeType,
		SessionToken:   result.SessionToken,
	}
	if result.ExpiryTime != nil {
		grant.ExpiryTime = *result.ExpiryTime
	}
	return grant, nil
}

// OneTime reports whether the grant is single-view.
func (g *AccessGrant) OneTime() bool {
	return g.AccessMode == AccessOneTime
}
