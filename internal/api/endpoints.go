package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Upload sends ciphertext and the share policy to the backend.
func (c *Client) Upload(ctx context.Context, params *UploadParams) (*UploadResult, error) {
	fileName := params.FileName
	if fileName == "" {
		fileName = "content"
	}

	fields := map[string]string{
		"iv":                params.IV,
		"access_mode":       params.AccessMode,
		"device_limit":      strconv.Itoa(params.DeviceLimit),
		"content_type":      params.ContentType,
		"pin":               params.Pin,
		"key_hash":          params.KeyHash,
		"dynamic_pin":       strconv.FormatBool(params.DynamicPin),
		"auto_terminate":    strconv.FormatBool(params.AutoTerminate),
		"require_biometric": strconv.FormatBool(params.RequireBiometric),
	}
	if params.DurationMinutes > 0 {
		fields["duration_minutes"] = strconv.Itoa(params.DurationMinutes)
	}
	if params.PinRotationMinutes > 0 {
		fields["pin_rotation_minutes"] = strconv.Itoa(params.PinRotationMinutes)
	}
	if len(params.TrustedDevices) > 0 {
		fields["trusted_devices"] = strings.Join(params.TrustedDevices, ",")
	}
	if params.FileName != "" {
		fields["file_name"] = params.FileName
	}
	if params.FileSize > 0 {
		fields["file_size"] = strconv.FormatInt(params.FileSize, 10)
	}
	if params.MimeType != "" {
		fields["mime_type"] = params.MimeType
	}

	var result UploadResult
	if err := c.doMultipart(ctx, "/content/upload", params.Ciphertext, fileName, fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Access requests the grant for a PIN. Any non-2xx response comes back
// as *Error; the caller maps it to a typed protocol failure. Access
// attempts are never retried here.
func (c *Client) Access(ctx context.Context, pin string, params *AccessParams) (*AccessResult, error) {
	path := fmt.Sprintf("/content/access/%s", url.PathEscape(pin))

	var result AccessResult
	if err := c.doWithRetries(ctx, "POST", path, params, &result, 0); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report sends a suspicious-activity report. The backend's response body
// carries no contract; only transport errors are returned, and the caller
// is expected to treat even those as fire-and-forget.
func (c *Client) Report(ctx context.Context, report *Report) error {
	return c.do(ctx, "POST", "/security/report", report, nil)
}

// Status fetches a share's lifecycle status.
func (c *Client) Status(ctx context.Context, pin string) (*StatusResult, error) {
	path := fmt.Sprintf("/content/status/%s", url.PathEscape(pin))

	var result StatusResult
	if err := c.do(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Terminate destroys a share immediately and returns the destruction
// certificate.
func (c *Client) Terminate(ctx context.Context, pin string) (*DestructionProof, error) {
	path := fmt.Sprintf("/content/terminate/%s", url.PathEscape(pin))

	var result DestructionProof
	if err := c.do(ctx, "DELETE", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
