package selfupdate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/spf13/afero"
	"golang.org/x/mod/semver"
)

// BackupSuffix is appended to the replaced executable.
const BackupSuffix = ".backup"

// Result describes a finished self-update run.
type Result struct {
	CurrentVersion string
	LatestVersion  string
	Updated        bool
	Path           string
}

// Updater checks for and applies new releases.
type Updater struct {
	client         *GitHubClient
	currentVersion string
	fs             afero.Fs
	executable     func() (string, error)
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithFS sets the filesystem used to replace the executable.
func WithFS(fs afero.Fs) UpdaterOption {
	return func(u *Updater) {
		u.fs = fs
	}
}

// WithExecutable overrides how the running executable is located.
func WithExecutable(fn func() (string, error)) UpdaterOption {
	return func(u *Updater) {
		u.executable = fn
	}
}

// NewUpdater creates an Updater for the running build version.
func NewUpdater(client *GitHubClient, currentVersion string, opts ...UpdaterOption) *Updater {
	u := &Updater{
		client:         client,
		currentVersion: currentVersion,
		fs:             filesystem.NewOS(),
		executable:     resolveExecPath,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Check returns the latest release and whether it is newer than the running
// build.
func (u *Updater) Check(ctx context.Context) (*Release, bool, error) {
	current, err := normalizeVersion(u.currentVersion)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrSelfUpdate, "cannot self-update build %q", u.currentVersion)
	}

	release, err := u.client.LatestRelease(ctx)
	if err != nil {
		return nil, false, err
	}
	latest, err := normalizeVersion(release.TagName)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrSelfUpdate, "latest release tag %q", release.TagName)
	}
	return release, semver.Compare(latest, current) > 0, nil
}

// Update installs the latest release when it is newer than the running
// build. When already up to date nothing is downloaded.
func (u *Updater) Update(ctx context.Context) (*Result, error) {
	logger := logging.GetLogger("selfupdate")
	done := logging.LogOperationStart(logger, "self-update")
	defer done()

	release, newer, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{CurrentVersion: u.currentVersion, LatestVersion: release.TagName}
	if !newer {
		logger.Info().Str("version", u.currentVersion).Msg("wowa is already up to date")
		return result, nil
	}
	if len(release.Assets) == 0 {
		return nil, errors.Newf(errors.ErrSelfUpdate, "release %s has no assets", release.TagName)
	}

	path, err := u.executable()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSelfUpdate, "locating the running executable")
	}
	if err := u.apply(ctx, release.Assets[0], path); err != nil {
		return nil, err
	}

	result.Updated = true
	result.Path = path
	logger.Info().Str("from", u.currentVersion).Str("to", release.TagName).Str("path", path).
		Msg("Updated wowa")
	return result, nil
}

// apply downloads asset next to path, moves path to path.backup and the
// download to path. The temp file shares the directory with the target so
// both renames stay on one filesystem.
func (u *Updater) apply(ctx context.Context, asset Asset, path string) error {
	logger := logging.GetLogger("selfupdate")

	tmp, err := afero.TempFile(u.fs, filepath.Dir(path), ".wowa-update-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrSelfUpdate, "creating temp file")
	}
	tmpName := tmp.Name()
	moved := false
	defer func() {
		if !moved {
			_ = u.fs.Remove(tmpName)
		}
	}()

	n, err := u.client.Download(ctx, asset, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, errors.ErrSelfUpdate, "writing temp file")
	}
	if err != nil {
		return err
	}
	logger.Debug().Int64("bytes", n).Str("asset", asset.Name).Msg("Downloaded release asset")

	mode := os.FileMode(0755)
	if info, err := u.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := u.fs.Chmod(tmpName, mode); err != nil {
		return errors.Wrap(err, errors.ErrSelfUpdate, "setting permissions")
	}

	backup := path + BackupSuffix
	if err := u.fs.Remove(backup); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrSelfUpdate, "removing old backup %s", backup)
	}
	if err := u.fs.Rename(path, backup); err != nil {
		return errors.Wrapf(err, errors.ErrSelfUpdate, "moving %s to %s", path, backup)
	}
	if err := u.fs.Rename(tmpName, path); err != nil {
		// put the old binary back so the install keeps working
		_ = u.fs.Rename(backup, path)
		return errors.Wrapf(err, errors.ErrSelfUpdate, "moving new binary to %s", path)
	}
	moved = true
	return nil
}

func resolveExecPath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(p)
}

// normalizeVersion adds the v prefix semver requires and validates the
// result.
func normalizeVersion(v string) (string, error) {
	norm := strings.TrimSpace(v)
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid semantic version %q", v)
	}
	return norm, nil
}
