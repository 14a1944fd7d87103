// Package filesystem holds the afero helpers shared by the installers:
// existence checks, atomic file writes, safe path joins and directory
// replacement. All functions take an afero.Fs so tests can run against a
// memory or base-path filesystem.
package filesystem
