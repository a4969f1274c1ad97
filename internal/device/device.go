// Package device derives a stable per-install identity and fingerprint
// from platform attributes. The fingerprint identifies a device for
// trusted-device bookkeeping and server-side device limits, so it must
// not vary between calls: it is computed only from stable attributes,
// never from the clock.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// installIDFile is the file holding the per-install device ID, relative
// to the state directory.
const installIDFile = "device_id"

// Identity describes the attributes a fingerprint is derived from.
type Identity struct {
	// DeviceID is a per-install UUID, created once and persisted.
	DeviceID string `json:"device_id"`
	// Model is the host model or hostname.
	Model string `json:"model"`
	// Platform is the OS and architecture, e.g. "linux/amd64".
	Platform string `json:"platform"`
	// AppVersion is the client application version.
	AppVersion string `json:"app_version"`
	// Synthetic is true when platform attributes could not be read and
	// the identity was generated instead of collected.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Collect builds the identity for this install. The device ID is created
// on first use and persisted under stateDir so the identity survives
// restarts. A failure to read platform attributes yields a clearly
// marked synthetic identity rather than an error.
func Collect(stateDir, appVersion string) Identity {
	id := Identity{
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		AppVersion: appVersion,
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		return synthetic(appVersion)
	}
	id.Model = host

	deviceID, err := loadOrCreateDeviceID(stateDir)
	if err != nil {
		return synthetic(appVersion)
	}
	id.DeviceID = deviceID

	return id
}

// synthetic returns a generated identity for hosts whose attributes
// cannot be read. The "synthetic-" prefix makes these identifiable
// server-side.
func synthetic(appVersion string) Identity {
	return Identity{
		DeviceID:   "synthetic-" + uuid.NewString(),
		Model:      "unknown",
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		AppVersion: appVersion,
		Synthetic:  true,
	}
}

func loadOrCreateDeviceID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, installIDFile)

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", err
	}
	return id, nil
}

// Fingerprint hashes a canonical JSON encoding of the identity. It is
// deterministic: the same identity always produces the same fingerprint.
func Fingerprint(id Identity) string {
	// json.Marshal on a struct emits fields in declaration order, which
	// is canonical enough for a fixed struct shape.
	data, err := json.Marshal(id)
	if err != nil {
		// Identity contains only strings and a bool; Marshal cannot fail.
		data = []byte(id.DeviceID)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
