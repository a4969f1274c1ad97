package api

import "time"

// Access modes understood by the backend.
const (
	AccessModeTimeBased = "time_based"
	AccessModeOneTime   = "one_time"
)

// UploadParams carries everything the sender uploads: ciphertext plus
// the share policy, verbatim. The content key never appears here.
type UploadParams struct {
	Ciphertext []byte
	IV         string // base64
	Pin        string
	KeyHash    string

	AccessMode         string
	DeviceLimit        int
	ContentType        string
	DurationMinutes    int // required for time_based
	DynamicPin         bool
	PinRotationMinutes int // required when DynamicPin is set
	AutoTerminate      bool
	RequireBiometric   bool
	TrustedDevices     []string

	FileName string
	FileSize int64
	MimeType string
}

// UploadResult is the backend's response to a successful upload.
type UploadResult struct {
	ContentID  string     `json:"content_id"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// AccessParams identifies the requesting device on an access attempt.
type AccessParams struct {
	DeviceID          string `json:"device_id"`
	DeviceFingerprint string `json:"device_fingerprint"`
	BiometricVerified bool   `json:"biometric_verified"`
	Platform          string `json:"platform"`
	KeyHash           string `json:"key_hash,omitempty"`
}

// AccessResult is the grant payload returned on a successful access.
type AccessResult struct {
	Content        string     `json:"content"` // ciphertext, base64
	IV             string     `json:"iv"`
	ContentID      string     `json:"content_id"`
	ViewsRemaining int        `json:"views_remaining"`
	DeviceLimit    int        `json:"device_limit"`
	CurrentDevices int        `json:"current_devices"`
	AccessMode     string     `json:"access_mode"`
	ExpiryTime     *time.Time `json:"expiry_time,omitempty"`
	ContentType    string     `json:"content_type"`
	FileName       string     `json:"file_name"`
	FileSize       int64      `json:"file_size"`
	MimeType       string     `json:"mime_type"`
	SessionToken   string     `json:"session_token"`
}

// Report is a suspicious-activity report. The response is ignored.
type Report struct {
	ContentID    string `json:"content_id"`
	ActivityType string `json:"activity_type"`
	DeviceID     string `json:"device_id"`
	Description  string `json:"description,omitempty"`
}

// StatusResult is the backend's view of a share's lifecycle.
type StatusResult struct {
	AccessMode      string     `json:"access_mode"`
	Views           int        `json:"views"`
	DeviceLimit     int        `json:"device_limit"`
	ExpiryTime      *time.Time `json:"expiry_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAccessed    *time.Time `json:"last_accessed,omitempty"`
	DevicesAccessed int        `json:"devices_accessed"`
	IsActive        bool       `json:"is_active"`
}

// DestructionProof is the certificate returned when content is destroyed.
type DestructionProof struct {
	CertificateID string            `json:"certificate_id"`
	ContentID     string            `json:"content_id"`
	Reason        string            `json:"reason"`
	DestroyedAt   time.Time         `json:"destroyed_at"`
	ProofHash     string            `json:"proof_hash"`
	Signature     string            `json:"signature"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
