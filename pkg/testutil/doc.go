// Package testutil provides utilities for testing wowa components.
//
// Key components:
//   - TestEnvironment: a game directory, filesystem and manifest per test
//   - BuildZip: in-memory addon archives
//   - SaveState helpers: write WeakAuras save-state files for an account
//
// Usage guidelines:
//   - Use EnvMemoryOnly when the code under test never renames directories
//   - Use EnvIsolated (real temp directory) for installs, which rely on rename
//   - All test data should be defined inline, not in external files
package testutil
