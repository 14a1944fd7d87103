package addons

import (
	"context"
	"io"
	"path/filepath"
	"strconv"

	"github.com/arthur-debert/wowa/pkg/archive"
	"github.com/arthur-debert/wowa/pkg/config"
	"github.com/arthur-debert/wowa/pkg/curse"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/paths"
	"github.com/arthur-debert/wowa/pkg/types"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
)

// Provider is the addon provider the manager resolves and downloads from.
type Provider interface {
	SearchMods(ctx context.Context, slug string, flavor types.Flavor) ([]curse.Mod, error)
	GetModFile(ctx context.Context, modID, fileID int) (*curse.File, error)
	Download(ctx context.Context, file *curse.File, w io.Writer) (int64, error)
}

// Options configures a Manager.
type Options struct {
	FS       afero.Fs
	Layout   paths.GameLayout
	Store    manifest.Store
	Provider Provider
	// Workers bounds UpdateAll concurrency; zero means config.DefaultWorkers.
	Workers int
}

// Manager installs and tracks addons.
type Manager struct {
	fs       afero.Fs
	layout   paths.GameLayout
	repo     *Repository
	provider Provider
	workers  int
	locks    keyedMutex
}

// Outcome is the result of installing or updating one addon.
type Outcome struct {
	Addon types.Addon `json:"addon" yaml:"addon"`
	// PreviousVersion is empty on a first install.
	PreviousVersion string `json:"previousVersion,omitempty" yaml:"previousVersion,omitempty"`
	// Changed is false when the installed version was already current.
	Changed bool `json:"changed" yaml:"changed"`
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	workers := opts.Workers
	if workers == 0 {
		workers = config.DefaultWorkers
	}
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &Manager{
		fs:       fs,
		layout:   opts.Layout,
		repo:     NewRepository(opts.Store),
		provider: opts.Provider,
		workers:  config.ClampWorkers(workers),
	}
}

// Repository exposes the manager's record store.
func (m *Manager) Repository() *Repository { return m.repo }

// List returns the tracked addons of one flavor, or all when flavor is nil.
func (m *Manager) List(ctx context.Context, flavor *types.Flavor) ([]types.Addon, error) {
	return m.repo.List(ctx, flavor)
}

// InstallOrUpdate installs the addon named by locator for flavor, or
// updates it when the provider has a different release. An unchanged
// version returns the tracked record without any download or disk write.
func (m *Manager) InstallOrUpdate(ctx context.Context, locator string, flavor types.Flavor) (*Outcome, error) {
	slug, err := NormalizeLocator(locator)
	if err != nil {
		return nil, err
	}
	return m.install(ctx, slug, flavor)
}

func (m *Manager) install(ctx context.Context, slug string, flavor types.Flavor) (*Outcome, error) {
	logger := logging.GetLogger("addons").With().Str("slug", slug).Str("flavor", flavor.String()).Logger()
	done := logging.LogOperationStart(logger, "install")
	defer done()

	unlock := m.locks.lock(flavor.String() + "/" + slug)
	defer unlock()

	mods, err := m.provider.SearchMods(ctx, slug, flavor)
	if err != nil {
		return nil, err
	}
	mod, err := selectMod(mods, slug)
	if err != nil {
		return nil, err
	}
	index, err := selectFile(mod, flavor)
	if err != nil {
		return nil, err
	}
	file, err := m.provider.GetModFile(ctx, mod.ID, index.FileID)
	if err != nil {
		return nil, err
	}

	existing, err := m.repo.Get(ctx, slug, flavor)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Version == file.DisplayName {
		logger.Info().Str("version", existing.Version).Msg("Addon is up to date")
		return &Outcome{Addon: *existing, PreviousVersion: existing.Version}, nil
	}

	root := m.layout.AddonsDir(flavor)
	if err := m.fs.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInstall, "failed to create %s", root)
	}

	staging, err := m.fetch(ctx, file, root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = staging.Cleanup() }()

	outcome := &Outcome{Changed: true}
	if existing != nil {
		outcome.PreviousVersion = existing.Version
		if err := m.removeDirs(root, existing.Directories); err != nil {
			return nil, err
		}
		orphaned := mapset.NewThreadUnsafeSet(existing.Directories...).
			Difference(mapset.NewThreadUnsafeSet(staging.Entries...))
		if orphaned.Cardinality() > 0 {
			logger.Debug().Strs("dirs", orphaned.ToSlice()).Msg("Removed directories dropped by the new version")
		}
	}

	if err := staging.Commit(root); err != nil {
		return nil, err
	}

	outcome.Addon = types.Addon{
		ID:          slug,
		Name:        mod.Name,
		Author:      authorName(mod),
		Version:     file.DisplayName,
		Flavor:      flavor,
		Directories: staging.Entries,
		Source: types.Source{
			Provider: curse.ProviderName,
			ID:       strconv.Itoa(mod.ID),
			URL:      curse.URLPrefix + slug,
		},
	}
	if err := m.repo.Save(ctx, outcome.Addon); err != nil {
		return nil, err
	}

	logger.Info().Str("version", file.DisplayName).Str("previous", outcome.PreviousVersion).
		Strs("dirs", staging.Entries).Msg("Installed addon")
	return outcome, nil
}

// fetch downloads file into a temp file under root and extracts it into a
// staging directory there.
func (m *Manager) fetch(ctx context.Context, file *curse.File, root string) (*archive.Staging, error) {
	tmp, err := afero.TempFile(m.fs, root, ".wowa-download-*.zip")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDownload, "failed to create download file in %s", root)
	}
	tmpName := tmp.Name()
	defer func() { _ = m.fs.Remove(tmpName) }()

	_, err = m.provider.Download(ctx, file, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, errors.ErrDownload, "failed to write %s", tmpName)
	}
	if err != nil {
		return nil, err
	}

	return archive.Extract(m.fs, tmpName, root)
}

func (m *Manager) removeDirs(root string, dirs []string) error {
	for _, dir := range dirs {
		target, err := filesystem.SafeJoin(root, dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInstall, "refusing to remove tracked directory %q", dir)
		}
		if err := m.fs.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrInstall, "failed to remove %s", target)
		}
	}
	return nil
}

// Remove deletes the addon's tracked directories and its record.
func (m *Manager) Remove(ctx context.Context, locator string, flavor types.Flavor) (*types.Addon, error) {
	slug, err := NormalizeLocator(locator)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.lock(flavor.String() + "/" + slug)
	defer unlock()

	existing, err := m.repo.Get(ctx, slug, flavor)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s is not installed for %s", slug, flavor).
			WithDetail("slug", slug)
	}

	root := m.layout.AddonsDir(flavor)
	if err := m.removeDirs(root, existing.Directories); err != nil {
		return nil, err
	}
	if _, err := m.repo.Delete(ctx, slug, flavor); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("addons")
	logger.Info().Str("slug", slug).Str("flavor", flavor.String()).
		Str("dir", filepath.Clean(root)).Msg("Removed addon")
	return existing, nil
}
