package secureshare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/secureshare/client-go/internal/api"
	"github.com/secureshare/client-go/internal/crypto"
	"github.com/secureshare/client-go/internal/device"
	"github.com/secureshare/client-go/internal/securestore"
	"github.com/secureshare/client-go/internal/session"
)

// reportTimeout bounds fire-and-forget security reports so an abandoned
// goroutine cannot hang on a dead backend.
const reportTimeout = 10 * time.Second

// Client is the SecureShare client. It encrypts content before upload,
// decrypts grants after access, and never sends a content key to the
// backend. A Client is safe for concurrent use.
type Client struct {
	api      *api.Client
	store    *securestore.Store
	identity device.Identity

	fingerprint   string
	onReportError func(error)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a SecureShare client for the given backend base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	cfg := clientConfig{
		timeout:    defaultTimeout,
		retries:    3,
		appVersion: defaultAppVersion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.stateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state directory: %w", err)
		}
		cfg.stateDir = filepath.Join(base, "secureshare")
	}

	store, err := securestore.Open(cfg.stateDir)
	if err != nil {
		return nil, err
	}

	apiOpts := []api.Option{
		api.WithTimeout(cfg.timeout),
		api.WithRetries(cfg.retries),
	}
	if cfg.retryOn != nil {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}
	apiClient, err := api.New(baseURL, apiOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	identity := device.Collect(cfg.stateDir, cfg.appVersion)

	return &Client{
		api:           apiClient,
		store:         store,
		identity:      identity,
		fingerprint:   device.Fingerprint(identity),
		onReportError: cfg.onReportError,
	}, nil
}

// Close marks the client closed and waits for in-flight background
// reports to finish. Local state is kept; it belongs to the install, not
// the client instance.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *Client) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Fingerprint returns this install's device fingerprint. Stable across
// calls and restarts.
func (c *Client) Fingerprint() string {
	return c.fingerprint
}

// DeviceID returns this install's device ID.
func (c *Client) DeviceID() string {
	return c.identity.DeviceID
}

// Share encrypts content on-device and uploads the ciphertext. The
// returned Share holds the PIN and the content key; both must reach the
// receiver out-of-band, and the key is never sent to the backend.
func (c *Client) Share(ctx context.Context, content []byte, opts ...ShareOption) (*Share, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	cfg := shareConfig{
		duration:      defaultDuration,
		deviceLimit:   defaultDeviceLimit,
		contentKind:   KindText,
		autoTerminate: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateShareConfig(content, &cfg); err != nil {
		return nil, err
	}

	creds, err := newAccessCredentials()
	if err != nil {
		return nil, err
	}

	ciphertext, err := crypto.Encrypt(content, creds.Key, creds.IV)
	if err != nil {
		return nil, err
	}

	params := &api.UploadParams{
		Ciphertext:       ciphertext,
		IV:               crypto.ToBase64(creds.IV),
		Pin:              creds.PIN,
		KeyHash:          creds.KeyHash,
		AccessMode:       api.AccessModeTimeBased,
		DeviceLimit:      cfg.deviceLimit,
		ContentType:      string(cfg.contentKind),
		DynamicPin:       cfg.dynamicPin,
		AutoTerminate:    cfg.autoTerminate,
		RequireBiometric: cfg.requireBiometric,
		TrustedDevices:   cfg.trustedDevices,
		FileName:         cfg.fileName,
		MimeType:         cfg.mimeType,
	}
	if cfg.oneTime {
		params.AccessMode = api.AccessModeOneTime
	} else {
		params.DurationMinutes = int(cfg.duration / time.Minute)
	}
	if cfg.dynamicPin {
		params.PinRotationMinutes = int(cfg.pinRotation / time.Minute)
	}
	if cfg.fileName != "" {
		params.FileSize = int64(len(content))
	}

	result, err := c.api.Upload(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	share := &Share{
		ContentID:   result.ContentID,
		PIN:         creds.PIN,
		Key:         creds.Key,
		IV:          creds.IV,
		KeyHash:     creds.KeyHash,
		KeyID:       creds.KeyID,
		ContentKind: cfg.contentKind,
		OneTime:     cfg.oneTime,
		CreatedAt:   time.Now().UTC(),
	}
	if result.ExpiryTime != nil {
		share.ExpiryTime = *result.ExpiryTime
	}

	for _, fp := range cfg.trustedDevices {
		if err := c.store.AddTrustedDevice(result.ContentID, fp); err != nil {
			return nil, err
		}
	}

	return share, nil
}

func validateShareConfig(content []byte, cfg *shareConfig) error {
	var problems []string
	if len(content) == 0 {
		problems = append(problems, "content must not be empty")
	}
	if cfg.deviceLimit < 1 {
		problems = append(problems, "device limit must be at least 1")
	}
	if !cfg.oneTime && cfg.duration <= 0 {
		problems = append(problems, "duration must be positive")
	}
	if cfg.dynamicPin && cfg.pinRotation < time.Minute {
		problems = append(problems, "PIN rotation interval must be at least one minute")
	}
	if _, err := ParseContentKind(string(cfg.contentKind)); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

// Access looks a share up by PIN and returns its grant. The grant holds
// ciphertext only; decryption happens in View, with a key obtained
// out-of-band. Access attempts are never retried, so a one-time view is
// never consumed twice by the transport layer.
func (c *Client) Access(ctx context.Context, pin string, opts ...AccessOption) (*AccessGrant, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if !validPin(pin) {
		return nil, ErrInvalidPin
	}

	var cfg accessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	params := &api.AccessParams{
		DeviceID:          c.identity.DeviceID,
		DeviceFingerprint: c.fingerprint,
		BiometricVerified: cfg.biometricVerified,
		Platform:          c.identity.Platform,
		KeyHash:           cfg.keyHash,
	}

	result, err := c.api.Access(ctx, pin, params)
	if err != nil {
		return nil, wrapError(err)
	}

	grant, err := newAccessGrant(result)
	if err != nil {
		return nil, err
	}

	if grant.SessionToken != "" {
		key := securestore.AccessTokenKey(grant.ContentID)
		if err := c.store.Set(key, []byte(grant.SessionToken)); err != nil {
			return nil, err
		}
	}

	return grant, nil
}

// View decrypts a grant with the out-of-band content key and starts a
// supervised viewing session. A decryption failure terminates the
// session before any plaintext is exposed and is indistinguishable
// between a wrong key and corrupted ciphertext.
func (c *Client) View(grant *AccessGrant, key []byte, opts ...ViewOption) (*ViewingSession, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, errors.New("grant is required")
	}
	if len(key) == 0 {
		return nil, ErrMissingKey
	}

	var cfg viewConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	onClosed := cfg.onClosed
	machine := session.New(session.Config{
		ContentID: grant.ContentID,
		OneTime:   grant.OneTime(),
		ExpiresAt: grant.ExpiryTime,
		Decrypt: func() ([]byte, error) {
			return crypto.Decrypt(grant.Ciphertext, key, grant.IV)
		},
		Reporter: &apiReporter{client: c},
		Clock:    cfg.clock,
		OnClosed: func(reason session.CloseReason) {
			if onClosed != nil {
				onClosed(CloseReason(reason))
			}
		},
		OnWarning: cfg.onWarning,
		WipeSession: func() {
			c.store.Delete(securestore.AccessTokenKey(grant.ContentID))
		},
		SuspiciousThreshold: cfg.suspiciousThreshold,
		InactivityTimeout:   cfg.inactivityTimeout,
		ConnectivityGrace:   cfg.connectivityGrace,
	})

	if err := machine.Start(); err != nil {
		if errors.Is(err, session.ErrTerminated) {
			return nil, ErrSessionTerminated
		}
		return nil, &DecryptionError{Stage: "cipher", Err: err}
	}

	return &ViewingSession{machine: machine, grant: grant}, nil
}

// Status fetches the backend's view of a share's lifecycle. Available to
// the sender without consuming a view.
func (c *Client) Status(ctx context.Context, pin string) (*ShareStatus, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if !validPin(pin) {
		return nil, ErrInvalidPin
	}

	result, err := c.api.Status(ctx, pin)
	if err != nil {
		return nil, wrapError(err)
	}
	return newShareStatus(result), nil
}

// Terminate destroys a share immediately and returns its verified
// destruction certificate.
func (c *Client) Terminate(ctx context.Context, pin string) (*DestructionProof, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if !validPin(pin) {
		return nil, ErrInvalidPin
	}

	result, err := c.api.Terminate(ctx, pin)
	if err != nil {
		return nil, wrapError(err)
	}

	proof := newDestructionProof(result)
	if err := proof.Verify(); err != nil {
		return nil, err
	}

	c.store.Delete(securestore.AccessTokenKey(proof.ContentID))
	return proof, nil
}

// ReportSuspiciousActivity sends a security report without blocking the
// caller. Failures never surface here; set WithReportErrorHandler to
// observe them.
func (c *Client) ReportSuspiciousActivity(contentID string, activityType ActivityType, detail string) {
	if err := c.checkClosed(); err != nil {
		return
	}
	c.report(contentID, string(activityType), detail)
}

func (c *Client) report(contentID, activityType, detail string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		err := c.api.Report(ctx, &api.Report{
			ContentID:    contentID,
			ActivityType: activityType,
			DeviceID:     c.identity.DeviceID,
			Description:  detail,
		})
		if err != nil && c.onReportError != nil {
			c.onReportError(wrapError(err))
		}
	}()
}

// TrustDevice adds a device fingerprint to the local trusted list for a
// share. The list is advisory: the backend's device limit is the
// authority, and this list only pre-authorizes fingerprints at upload.
func (c *Client) TrustDevice(contentID, fingerprint string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return c.store.AddTrustedDevice(contentID, fingerprint)
}

// IsTrustedDevice reports whether a fingerprint is locally trusted for a
// share.
func (c *Client) IsTrustedDevice(contentID, fingerprint string) (bool, error) {
	if err := c.checkClosed(); err != nil {
		return false, err
	}
	return c.store.IsTrustedDevice(contentID, fingerprint)
}

// TrustedDevices returns the local trusted-device list for a share.
func (c *Client) TrustedDevices(contentID string) ([]string, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.store.TrustedDevices(contentID)
}

// apiReporter forwards session telemetry to the backend. Both methods
// are fire-and-forget, as the session machine requires.
type apiReporter struct {
	client *Client
}

func (r *apiReporter) ReportSuspicious(contentID string, activityType session.ActivityType, detail string) {
	r.client.report(contentID, string(activityType), detail)
}

func (r *apiReporter) ReportClosed(contentID string, reason session.CloseReason) {
	r.client.report(contentID, "session_closed", string(reason))
}
