// Package wago is the aura provider client for the Wago data API: a batch
// version check and a per-slug raw payload fetch.
package wago

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/httpclient"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/retry"
	"github.com/arthur-debert/wowa/pkg/types"
)

const (
	// DefaultBaseURL is the Wago data API root.
	DefaultBaseURL = "https://data.wago.io"

	// SourceName is the provenance tag written into companion data.
	SourceName = "Wago"

	// DefaultMaxPayloadBytes bounds a raw encoded aura (32 MB).
	DefaultMaxPayloadBytes = 32 << 20
)

// urlPattern matches the canonical aura URL stored in save-state entries.
var urlPattern = regexp.MustCompile(`^https://wago\.io/([a-zA-Z0-9]+)/(\d+)$`)

// ParseURL extracts the slug and version from a canonical aura URL.
func ParseURL(u string) (slug string, version int, ok bool) {
	m := urlPattern.FindStringSubmatch(u)
	if m == nil {
		return "", 0, false
	}
	v, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], v, true
}

// RemoteAura is one entry of the version check reply.
type RemoteAura struct {
	ID            string           `json:"_id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	URL           string           `json:"url"`
	Username      string           `json:"username"`
	Version       int              `json:"version"`
	VersionString string           `json:"versionString"`
	Changelog     *types.Changelog `json:"changelog"`
}

// Client queries the Wago data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	policy     retry.Policy
	maxPayload int64
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(base, "/") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithRetryPolicy sets the retry policy for reads.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(cl *Client) { cl.policy = p }
}

// WithMaxPayload sets the largest raw payload accepted, in bytes.
func WithMaxPayload(n int64) ClientOption {
	return func(cl *Client) { cl.maxPayload = n }
}

// NewClient creates a Client with defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "wowa/dev",
		policy:     retry.DefaultPolicy(3),
		maxPayload: DefaultMaxPayloadBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckVersions reports the current remote version of every slug in one
// request. Unknown slugs are simply absent from the reply.
func (c *Client) CheckVersions(ctx context.Context, slugs []string) ([]RemoteAura, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string][]string{"ids": slugs})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "encoding version check")
	}
	reqURL := c.baseURL + "/api/check/weakauras"

	auras, err := retry.Do(ctx, c.policy, "wago.check", func() ([]RemoteAura, error) {
		var out []RemoteAura
		resp, err := c.do(ctx, http.MethodPost, reqURL, body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if err := httpclient.CheckStatus(resp); err != nil {
			return nil, err
		}
		if err := httpclient.DecodeJSON(resp.Body, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, wrap(err, "checking %d aura versions", len(slugs))
	}

	logger := logging.GetLogger("wago")
	logger.Debug().Int("requested", len(slugs)).Int("returned", len(auras)).Msg("Checked aura versions")
	return auras, nil
}

// RawEncoded fetches the encoded import string for slug.
func (c *Client) RawEncoded(ctx context.Context, slug string) (string, error) {
	reqURL := c.baseURL + "/api/raw/encoded?id=" + url.QueryEscape(slug)

	encoded, err := retry.Do(ctx, c.policy, "wago.raw", func() (string, error) {
		resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return "", err
		}
		defer func() { _ = resp.Body.Close() }()
		if err := httpclient.CheckStatus(resp); err != nil {
			return "", err
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
		if err != nil {
			return "", fmt.Errorf("reading payload: %w", err)
		}
		if int64(len(data)) > c.maxPayload {
			return "", retry.Permanent(fmt.Errorf("payload exceeds %d bytes", c.maxPayload))
		}
		return string(data), nil
	})
	if err != nil {
		return "", wrap(err, "fetching payload for %q", slug)
	}
	return encoded, nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, rdr)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func wrap(err error, format string, args ...interface{}) error {
	werr := errors.Wrapf(retry.Cause(err), errors.ErrProvider, format, args...)
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) {
		werr = werr.WithDetail("status", statusErr.StatusCode)
	}
	return werr
}
