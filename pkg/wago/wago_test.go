// pkg/wago/wago_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: wagotest HTTP server
// PURPOSE: Test URL parsing, batch version checks and payload fetches

package wago_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/retry"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/wago"
	"github.com/arthur-debert/wowa/pkg/wago/wagotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(srv *wagotest.Server) *wago.Client {
	return wago.NewClient(
		wago.WithBaseURL(srv.URL),
		wago.WithRetryPolicy(retry.Policy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
	)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		slug    string
		version int
		ok      bool
	}{
		{"https://wago.io/abc123/42", "abc123", 42, true},
		{"https://wago.io/ABCdef/1", "ABCdef", 1, true},
		{"https://wago.io/abc123", "", 0, false},
		{"https://wago.io/abc-123/4", "", 0, false},
		{"http://wago.io/abc123/4", "", 0, false},
		{"https://wago.io/abc123/4/extra", "", 0, false},
		{"https://evil.example/abc123/4", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			slug, version, ok := wago.ParseURL(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slug, slug)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestCheckVersions(t *testing.T) {
	srv := wagotest.New(t)
	srv.AddAura(wago.RemoteAura{
		Slug: "abc", Name: "Raid Frames", Username: "someone", Version: 5, VersionString: "1.2.0",
		Changelog: &types.Changelog{Text: "**bold**", Format: types.ChangelogMarkdown},
	}, "!WA:2!abc")

	auras, err := newClient(srv).CheckVersions(context.Background(), []string{"abc", "missing"})
	require.NoError(t, err)
	require.Len(t, auras, 1)
	assert.Equal(t, 5, auras[0].Version)
	assert.Equal(t, "1.2.0", auras[0].VersionString)
	assert.Equal(t, types.ChangelogMarkdown, auras[0].Changelog.Format)

	assert.Equal(t, [][]string{{"abc", "missing"}}, srv.Checked())
}

func TestCheckVersions_EmptyMakesNoRequest(t *testing.T) {
	srv := wagotest.New(t)

	auras, err := newClient(srv).CheckVersions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, auras)
	assert.Zero(t, srv.Count(wagotest.KindCheck))
}

func TestRawEncoded(t *testing.T) {
	srv := wagotest.New(t)
	srv.AddAura(wago.RemoteAura{Slug: "abc", Version: 2}, "!WA:2!payload")

	encoded, err := newClient(srv).RawEncoded(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "!WA:2!payload", encoded)

	_, err = newClient(srv).RawEncoded(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProvider))
	assert.Equal(t, []string{"abc", "nope"}, srv.RawSlugs(), "404 is not retried")
}

func TestRawEncoded_OversizedPayload(t *testing.T) {
	srv := wagotest.New(t)
	srv.AddAura(wago.RemoteAura{Slug: "exact", Version: 2}, strings.Repeat("x", 64))
	srv.AddAura(wago.RemoteAura{Slug: "huge", Version: 2}, strings.Repeat("x", 65))

	client := wago.NewClient(
		wago.WithBaseURL(srv.URL),
		wago.WithMaxPayload(64),
		wago.WithRetryPolicy(retry.Policy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
	)

	encoded, err := client.RawEncoded(context.Background(), "exact")
	require.NoError(t, err)
	assert.Len(t, encoded, 64)

	encoded, err = client.RawEncoded(context.Background(), "huge")
	require.Error(t, err)
	assert.Empty(t, encoded)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProvider))
	assert.Contains(t, err.Error(), "payload exceeds 64 bytes")
	assert.Equal(t, []string{"exact", "huge"}, srv.RawSlugs(), "an oversized payload is not retried")
}
