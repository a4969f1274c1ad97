package secureshare

import (
	"errors"
	"fmt"
	"testing"

	"github.com/secureshare/client-go/internal/api"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{401, ErrInvalidCredential},
		{403, ErrDeviceLimitReached},
		{404, ErrPinNotFound},
		{410, ErrContentExpired},
		{423, ErrRateLimited},
	}
	for _, tt := range tests {
		err := error(&APIError{StatusCode: tt.status})
		if !errors.Is(err, tt.sentinel) {
			t.Errorf("status %d does not match %v", tt.status, tt.sentinel)
		}
	}

	if errors.Is(&APIError{StatusCode: 500}, ErrPinNotFound) {
		t.Error("500 matched ErrPinNotFound")
	}
	if errors.Is(&APIError{StatusCode: 404}, ErrContentExpired) {
		t.Error("404 matched ErrContentExpired")
	}
}

func TestWrapError(t *testing.T) {
	wrapped := wrapError(&api.Error{StatusCode: 404, Message: "not found"})
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatalf("wrapError(*api.Error) = %T, want *APIError", wrapped)
	}
	if !errors.Is(wrapped, ErrPinNotFound) {
		t.Error("wrapped 404 does not match ErrPinNotFound")
	}

	cause := fmt.Errorf("connection refused")
	wrappedNet := wrapError(&api.NetworkError{Err: cause, URL: "http://x", Attempt: 2})
	var netErr *NetworkError
	if !errors.As(wrappedNet, &netErr) {
		t.Fatalf("wrapError(*api.NetworkError) = %T, want *NetworkError", wrappedNet)
	}
	if !errors.Is(wrappedNet, cause) {
		t.Error("network error does not unwrap to its cause")
	}

	if wrapError(nil) != nil {
		t.Error("wrapError(nil) != nil")
	}
	plain := errors.New("plain")
	if wrapError(plain) != plain {
		t.Error("wrapError rewrote an unrelated error")
	}
}

func TestDecryptionError_Is(t *testing.T) {
	err := error(&DecryptionError{Stage: "cipher", Err: errors.New("authentication failed")})
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Error("DecryptionError does not match ErrDecryptionFailed")
	}
}

func TestSecureShareError_Marker(t *testing.T) {
	for _, err := range []error{
		&APIError{StatusCode: 404},
		&NetworkError{Err: errors.New("x")},
		&DecryptionError{Err: errors.New("x")},
		&ValidationError{Errors: []string{"x"}},
	} {
		if _, ok := err.(SecureShareError); !ok {
			t.Errorf("%T does not implement SecureShareError", err)
		}
	}
}
