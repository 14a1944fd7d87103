package curse

import (
	"context"
	"crypto/sha1" //nolint:gosec // matches the checksum CurseForge publishes
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/httpclient"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/retry"
	"github.com/arthur-debert/wowa/pkg/types"
)

// DefaultBaseURL is the CurseForge API root.
const DefaultBaseURL = "https://api.curseforge.com"

// Client queries the CurseForge API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	policy     retry.Policy
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets the API key sent as x-api-key.
func WithToken(token string) ClientOption {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithRetryPolicy sets the retry policy for reads.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(cl *Client) {
		cl.policy = p
	}
}

// NewClient creates a Client with defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "wowa/dev",
		policy:     retry.DefaultPolicy(3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchMods searches for mods with the exact slug filter for a flavor.
// The API may still return near matches; callers must compare slugs.
func (c *Client) SearchMods(ctx context.Context, slug string, flavor types.Flavor) ([]Mod, error) {
	q := url.Values{}
	q.Set("gameId", strconv.Itoa(GameID))
	q.Set("gameVersionTypeId", strconv.Itoa(GameVersionTypeID(flavor)))
	q.Set("slug", slug)
	q.Set("index", "0")
	q.Set("sortField", "2")
	q.Set("sortOrder", "desc")
	reqURL := c.baseURL + "/v1/mods/search?" + q.Encode()

	res, err := retry.Do(ctx, c.policy, "curse.search", func() (searchModsResponse, error) {
		var out searchModsResponse
		err := c.getJSON(ctx, reqURL, &out)
		return out, err
	})
	if err != nil {
		return nil, c.wrap(err, "searching for %q", slug)
	}

	logger := logging.GetLogger("curse")
	logger.Debug().Str("slug", slug).Str("flavor", flavor.String()).
		Int("results", len(res.Data)).Msg("Searched mods")
	return res.Data, nil
}

// GetModFile fetches the full metadata of one file.
func (c *Client) GetModFile(ctx context.Context, modID, fileID int) (*File, error) {
	reqURL := fmt.Sprintf("%s/v1/mods/%d/files/%d", c.baseURL, modID, fileID)

	res, err := retry.Do(ctx, c.policy, "curse.file", func() (modFileResponse, error) {
		var out modFileResponse
		err := c.getJSON(ctx, reqURL, &out)
		return out, err
	})
	if err != nil {
		return nil, c.wrap(err, "fetching file %d of mod %d", fileID, modID)
	}
	return &res.Data, nil
}

// Download streams the file's archive into w and verifies the published
// SHA-1 when present. It is never retried.
func (c *Client) Download(ctx context.Context, file *File, w io.Writer) (int64, error) {
	if file.DownloadURL == "" {
		return 0, errors.Newf(errors.ErrProvider, "file %d has no download url (distribution disabled by the author)", file.ID).
			WithDetail("fileId", file.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.DownloadURL, http.NoBody)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDownload, "creating download request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrDownload, "downloading %s", httpclient.RedactURL(file.DownloadURL))
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httpclient.CheckStatus(resp); err != nil {
		return 0, errors.Wrapf(retry.Cause(err), errors.ErrDownload, "downloading %s", httpclient.RedactURL(file.DownloadURL))
	}

	h := sha1.New() //nolint:gosec
	n, err := io.Copy(io.MultiWriter(w, h), resp.Body)
	if err != nil {
		return n, errors.Wrapf(err, errors.ErrDownload, "downloading %s", httpclient.RedactURL(file.DownloadURL))
	}

	if want := file.SHA1(); want != "" {
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, want) {
			return n, errors.Newf(errors.ErrDownload, "checksum mismatch for %s: got %s, want %s", file.FileName, got, want)
		}
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("x-api-key", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httpclient.CheckStatus(resp); err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp.Body, v)
}

func (c *Client) wrap(err error, format string, args ...interface{}) error {
	err = retry.Cause(err)
	werr := errors.Wrapf(err, errors.ErrProvider, format, args...)
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) {
		werr = werr.WithDetail("status", statusErr.StatusCode)
		if statusErr.StatusCode == http.StatusForbidden || statusErr.StatusCode == http.StatusUnauthorized {
			werr = werr.WithDetail("hint", "check curse.token")
		}
	}
	return werr
}
