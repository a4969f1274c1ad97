package secureshare

import (
	"errors"
	"fmt"

	"github.com/secureshare/client-go/internal/api"
	"github.com/secureshare/client-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingBaseURL is returned when no backend URL is provided.
	ErrMissingBaseURL = errors.New("backend base URL is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrEntropyFailure is returned when the system random source fails.
	// Credential generation never falls back to a predictable source.
	ErrEntropyFailure = crypto.ErrEntropyFailure

	// ErrKeyDerivation is returned when master-key derivation fails.
	ErrKeyDerivation = crypto.ErrKeyDerivation

	// ErrDecryptionFailed is returned when content decryption fails.
	// A wrong key and corrupted ciphertext are indistinguishable.
	ErrDecryptionFailed = crypto.ErrDecryptionFailed

	// ErrPinNotFound is returned when no share exists for a PIN.
	ErrPinNotFound = errors.New("PIN not found")

	// ErrContentExpired is returned when the content has expired or was
	// already destroyed.
	ErrContentExpired = errors.New("content expired or destroyed")

	// ErrInvalidCredential is returned when the supplied key hash does
	// not match the share.
	ErrInvalidCredential = errors.New("invalid access credential")

	// ErrDeviceLimitReached is returned when the share's device limit is
	// exhausted.
	ErrDeviceLimitReached = errors.New("device limit reached")

	// ErrRateLimited is returned when the backend has locked the PIN
	// after repeated failed attempts.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidPin is returned when a PIN is not exactly four digits.
	ErrInvalidPin = errors.New("PIN must be exactly four digits")

	// ErrMissingKey is returned when a view is started without a content key.
	ErrMissingKey = errors.New("content key is required")

	// ErrSessionTerminated is returned when a viewing session has already
	// reached its terminal state.
	ErrSessionTerminated = errors.New("viewing session terminated")

	// ErrMasterKeyNotSet is returned when verifying a passphrase before
	// one has been enrolled.
	ErrMasterKeyNotSet = errors.New("no master passphrase enrolled")

	// ErrInvalidProof is returned when a destruction certificate fails
	// verification.
	ErrInvalidProof = errors.New("destruction proof verification failed")
)

// SecureShareError is implemented by all SDK errors.
type SecureShareError interface {
	error
	SecureShareError() // marker method
}

// APIError represents an HTTP error from the SecureShare backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// SecureShareError implements the SecureShareError interface.
func (e *APIError) SecureShareError() {}

// Is implements errors.Is for sentinel error matching. The mapping
// follows the backend's status contract: 404 PIN unknown, 410 expired or
// destroyed, 401 bad credential, 403 device limit, 423 locked.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401:
		return target == ErrInvalidCredential
	case 403:
		return target == ErrDeviceLimitReached
	case 404:
		return target == ErrPinNotFound
	case 410:
		return target == ErrContentExpired
	case 423:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SecureShareError implements the SecureShareError interface.
func (e *NetworkError) SecureShareError() {}

// DecryptionError wraps a content decryption failure with the stage it
// occurred at.
type DecryptionError struct {
	Stage string // "decode", "cipher"
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// SecureShareError implements the SecureShareError interface.
func (e *DecryptionError) SecureShareError() {}

// ValidationError contains one or more share-policy validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// SecureShareError implements the SecureShareError interface.
func (e *ValidationError) SecureShareError() {}

// wrapError converts internal API errors to public errors so that
// errors.Is() checks work with the sentinel errors above.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:     netErr.Err,
			URL:     netErr.URL,
			Attempt: netErr.Attempt,
		}
	}

	return err
}
