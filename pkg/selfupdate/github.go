package selfupdate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/httpclient"
	"github.com/arthur-debert/wowa/pkg/retry"
)

// DefaultBaseURL is the GitHub API root.
const DefaultBaseURL = "https://api.github.com"

// Release is a published GitHub release.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	HTMLURL    string  `json:"html_url"`
	Assets     []Asset `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// GitHubClient reads releases of one repository.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    string
	repo       string // owner/name
	userAgent  string
	policy     retry.Policy
}

// ClientOption configures a GitHubClient during construction.
type ClientOption func(*GitHubClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *GitHubClient) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(g *GitHubClient) {
		g.userAgent = ua
	}
}

// WithRetryPolicy sets the retry policy for the release lookup.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(g *GitHubClient) {
		g.policy = p
	}
}

// NewGitHubClient creates a client for repo, given as owner/name.
func NewGitHubClient(repo string, opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		repo:       strings.Trim(repo, "/"),
		userAgent:  "wowa-app",
		policy:     retry.DefaultPolicy(3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the latest published release.
func (c *GitHubClient) LatestRelease(ctx context.Context) (*Release, error) {
	if strings.Count(c.repo, "/") != 1 {
		return nil, errors.Newf(errors.ErrInvalidInput, "release repository must be owner/name, got %q", c.repo)
	}
	reqURL := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repo)

	release, err := retry.Do(ctx, c.policy, "github.latest", func() (Release, error) {
		var out Release
		resp, err := c.do(ctx, reqURL, "application/vnd.github+json")
		if err != nil {
			return out, err
		}
		defer func() { _ = resp.Body.Close() }()

		if err := httpclient.CheckStatus(resp); err != nil {
			return out, err
		}
		err = httpclient.DecodeJSON(resp.Body, &out)
		return out, err
	})
	if err != nil {
		return nil, errors.Wrapf(retry.Cause(err), errors.ErrSelfUpdate, "fetching latest release of %s", c.repo)
	}
	return &release, nil
}

// Download streams the asset into w. It is never retried.
func (c *GitHubClient) Download(ctx context.Context, asset Asset, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, asset.BrowserDownloadURL, "application/octet-stream")
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrDownload, "downloading %s", asset.Name)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httpclient.CheckStatus(resp); err != nil {
		return 0, errors.Wrapf(retry.Cause(err), errors.ErrDownload, "downloading %s", asset.Name)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrapf(err, errors.ErrDownload, "downloading %s", asset.Name)
	}
	return n, nil
}

func (c *GitHubClient) do(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}
