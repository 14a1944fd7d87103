// Package httpclient holds the transport pieces shared by the provider
// clients: client construction, status classification and bounded JSON
// decoding.
package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/wowa/pkg/retry"
)

// MaxJSONResponseBytes bounds JSON API responses (10 MB).
const MaxJSONResponseBytes = 10 << 20

// New returns an http.Client with the given timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// CheckStatus returns a StatusError for a non-2xx response. Client errors
// other than 429 are marked permanent for the retry loop.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := &StatusError{
		Method:     resp.Request.Method,
		URL:        RedactURL(resp.Request.URL.String()),
		StatusCode: resp.StatusCode,
		Body:       string(snippet),
	}
	if !err.Retryable() {
		return retry.Permanent(err)
	}
	return err
}

// DecodeJSON decodes a bounded JSON body into v.
func DecodeJSON(body io.Reader, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(body, MaxJSONResponseBytes)).Decode(v); err != nil {
		return retry.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// RedactURL strips the query string and fragment for safe logging.
func RedactURL(raw string) string {
	for i, r := range raw {
		if r == '?' || r == '#' {
			return raw[:i]
		}
	}
	return raw
}
