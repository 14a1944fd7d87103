// pkg/testutil/environment.go
// DEPENDENCIES: afero, in-memory manifest
// PURPOSE: Orchestrate test environments with a game directory and manifest

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/paths"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides a game install, a filesystem and a manifest.
type TestEnvironment struct {
	FS      afero.Fs
	GameDir string
	Layout  paths.GameLayout
	Store   *manifest.SQLStore
	Type    EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}
	switch envType {
	case EnvMemoryOnly:
		env.FS = afero.NewMemMapFs()
		env.GameDir = "/games/World of Warcraft"
	case EnvIsolated:
		env.FS = afero.NewOsFs()
		env.GameDir = filepath.Join(t.TempDir(), "World of Warcraft")
	}

	layout, err := paths.NewGameLayout(env.GameDir)
	require.NoError(t, err)
	env.Layout = layout

	store, err := manifest.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	env.Store = store

	return env
}

// AddonsDir returns the AddOns directory for flavor.
func (e *TestEnvironment) AddonsDir(f types.Flavor) string {
	return e.Layout.AddonsDir(f)
}

// WriteFile writes content at path, creating parents.
func (e *TestEnvironment) WriteFile(path, content string) {
	e.t.Helper()
	require.NoError(e.t, e.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, afero.WriteFile(e.FS, path, []byte(content), 0644))
}

// ReadFile returns the content at path.
func (e *TestEnvironment) ReadFile(path string) string {
	e.t.Helper()
	data, err := afero.ReadFile(e.FS, path)
	require.NoError(e.t, err)
	return string(data)
}

// Exists reports whether path exists.
func (e *TestEnvironment) Exists(path string) bool {
	e.t.Helper()
	ok, err := afero.Exists(e.FS, path)
	require.NoError(e.t, err)
	return ok
}

// SavedVariablesPath returns the WeakAuras save-state path for account.
func (e *TestEnvironment) SavedVariablesPath(f types.Flavor, account string) string {
	return filepath.Join(e.Layout.AccountsDir(f), account, paths.SavedVariablesName, "WeakAuras.lua")
}

// WriteSaveState writes a WeakAuras save-state file for account.
func (e *TestEnvironment) WriteSaveState(f types.Flavor, account, content string) {
	e.t.Helper()
	e.WriteFile(e.SavedVariablesPath(f, account), content)
}
