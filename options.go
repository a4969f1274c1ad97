package secureshare

import (
	"net/http"
	"time"

	"github.com/secureshare/client-go/internal/session"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultAppVersion  = "dev"
	defaultDeviceLimit = 1
	defaultDuration    = time.Hour
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	retries       int
	retryOn       []int
	stateDir      string
	appVersion    string
	onReportError func(error)
}

// shareConfig holds configuration for one share.
type shareConfig struct {
	oneTime          bool
	duration         time.Duration
	deviceLimit      int
	contentKind      ContentKind
	fileName         string
	mimeType         string
	dynamicPin       bool
	pinRotation      time.Duration
	autoTerminate    bool
	requireBiometric bool
	trustedDevices   []string
}

// accessConfig holds configuration for one access attempt.
type accessConfig struct {
	biometricVerified bool
	keyHash           string
}

// viewConfig holds configuration for one viewing session.
type viewConfig struct {
	clock               session.Clock
	onClosed            func(CloseReason)
	onWarning           func(string)
	suspiciousThreshold int
	inactivityTimeout   time.Duration
	connectivityGrace   time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// ShareOption configures a share.
type ShareOption func(*shareConfig)

// AccessOption configures an access attempt.
type AccessOption func(*accessConfig)

// ViewOption configures a viewing session.
type ViewOption func(*viewConfig)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for retryable API calls.
// Access attempts are never retried regardless of this setting.
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithStateDir sets the directory for the client's secure local state
// (master-key hash, session tokens, trusted-device lists, device ID).
// Defaults to a "secureshare" directory under the user config dir.
func WithStateDir(dir string) Option {
	return func(c *clientConfig) {
		c.stateDir = dir
	}
}

// WithAppVersion sets the application version included in the device
// fingerprint.
func WithAppVersion(version string) Option {
	return func(c *clientConfig) {
		c.appVersion = version
	}
}

// WithReportErrorHandler sets a callback for failures on the
// fire-and-forget suspicious-activity reporting path. Those failures are
// never returned to callers; this is the only way to observe them.
func WithReportErrorHandler(fn func(error)) Option {
	return func(c *clientConfig) {
		c.onReportError = fn
	}
}

// WithOneTime makes the share single-view: the backend destroys it after
// the first access, and backgrounding the viewer terminates the session.
func WithOneTime() ShareOption {
	return func(c *shareConfig) {
		c.oneTime = true
	}
}

// WithDuration sets the time-based share lifetime. Ignored for one-time
// shares. Default: 1 hour.
func WithDuration(d time.Duration) ShareOption {
	return func(c *shareConfig) {
		c.duration = d
	}
}

// WithDeviceLimit sets how many devices may access the share. Default: 1.
func WithDeviceLimit(n int) ShareOption {
	return func(c *shareConfig) {
		c.deviceLimit = n
	}
}

// WithContentKind sets the content kind. Default: KindText.
func WithContentKind(kind ContentKind) ShareOption {
	return func(c *shareConfig) {
		c.contentKind = kind
	}
}

// WithFileName sets the display file name and its MIME type.
func WithFileName(name, mimeType string) ShareOption {
	return func(c *shareConfig) {
		c.fileName = name
		c.mimeType = mimeType
	}
}

// WithDynamicPin enables server-side PIN rotation at the given interval.
func WithDynamicPin(rotation time.Duration) ShareOption {
	return func(c *shareConfig) {
		c.dynamicPin = true
		c.pinRotation = rotation
	}
}

// WithAutoTerminate controls whether the backend destroys the share when
// suspicious activity is reported against it. Default: true.
func WithAutoTerminate(enabled bool) ShareOption {
	return func(c *shareConfig) {
		c.autoTerminate = enabled
	}
}

// WithRequireBiometric requires receivers to confirm a biometric check
// before access is granted.
func WithRequireBiometric() ShareOption {
	return func(c *shareConfig) {
		c.requireBiometric = true
	}
}

// WithTrustedDevices pre-authorizes receiver device fingerprints.
func WithTrustedDevices(fingerprints ...string) ShareOption {
	return func(c *shareConfig) {
		c.trustedDevices = append(c.trustedDevices, fingerprints...)
	}
}

// WithBiometricVerified marks the access attempt as biometrically
// confirmed by the platform.
func WithBiometricVerified() AccessOption {
	return func(c *accessConfig) {
		c.biometricVerified = true
	}
}

// WithKeyHash includes the content-key hash in the access request so the
// backend can reject a wrong key before handing out ciphertext.
func WithKeyHash(keyHash string) AccessOption {
	return func(c *accessConfig) {
		c.keyHash = keyHash
	}
}

// OnClosed sets the callback invoked exactly once when the viewing
// session terminates.
func OnClosed(fn func(CloseReason)) ViewOption {
	return func(c *viewConfig) {
		c.onClosed = fn
	}
}

// OnWarning sets the callback for non-terminal session warnings.
func OnWarning(fn func(string)) ViewOption {
	return func(c *viewConfig) {
		c.onWarning = fn
	}
}

// WithSuspiciousThreshold overrides the number of suspicious events that
// force termination. Default: 3.
func WithSuspiciousThreshold(n int) ViewOption {
	return func(c *viewConfig) {
		c.suspiciousThreshold = n
	}
}

// WithInactivityTimeout overrides the heartbeat watchdog window.
// Default: 5 minutes.
func WithInactivityTimeout(d time.Duration) ViewOption {
	return func(c *viewConfig) {
		c.inactivityTimeout = d
	}
}

// WithConnectivityGrace overrides the offline grace window.
// Default: 10 seconds.
func WithConnectivityGrace(d time.Duration) ViewOption {
	return func(c *viewConfig) {
		c.connectivityGrace = d
	}
}

// withClock injects a simulated clock. Test hook.
func withClock(clock session.Clock) ViewOption {
	return func(c *viewConfig) {
		c.clock = clock
	}
}
