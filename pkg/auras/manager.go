package auras

import (
	"context"
	"os"

	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/markup"
	"github.com/arthur-debert/wowa/pkg/paths"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/wago"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
)

// Provider is the aura provider queried during a sync.
type Provider interface {
	CheckVersions(ctx context.Context, slugs []string) ([]wago.RemoteAura, error)
	RawEncoded(ctx context.Context, slug string) (string, error)
}

// Options configures a Manager.
type Options struct {
	FS       afero.Fs
	Layout   paths.GameLayout
	Provider Provider
}

// Manager reads local auras and syncs them with the provider.
type Manager struct {
	fs       afero.Fs
	layout   paths.GameLayout
	provider Provider
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &Manager{fs: fs, layout: opts.Layout, provider: opts.Provider}
}

// SyncAll checks every local aura against the provider and writes the newer
// versions into the companion data file. It returns the updates found in
// this run. With no local auras it returns immediately without touching the
// network or installing the companion addon.
func (m *Manager) SyncAll(ctx context.Context, flavor types.Flavor) ([]types.AuraUpdate, error) {
	logger := logging.GetLogger("auras").With().Str("flavor", flavor.String()).Logger()
	done := logging.LogOperationStart(logger, "sync")
	defer done()

	local, err := m.ListLocal(flavor)
	if err != nil {
		return nil, err
	}
	if len(local) == 0 {
		return nil, nil
	}

	if _, err := m.ensureCompanion(flavor); err != nil {
		return nil, err
	}

	// the same aura can be imported twice; the oldest copy decides
	installed := map[string]int{}
	slugs := mapset.NewThreadUnsafeSet[string]()
	var order []string
	for _, a := range local {
		if v, seen := installed[a.Slug]; !seen || a.Version < v {
			installed[a.Slug] = a.Version
		}
		if slugs.Add(a.Slug) {
			order = append(order, a.Slug)
		}
	}

	remote, err := m.provider.CheckVersions(ctx, order)
	if err != nil {
		return nil, err
	}

	var updates []types.AuraUpdate
	for _, r := range remote {
		localVersion, ok := installed[r.Slug]
		if !ok || r.Version <= localVersion {
			continue
		}

		encoded, err := m.provider.RawEncoded(ctx, r.Slug)
		if err != nil {
			return nil, err
		}

		update := types.AuraUpdate{
			Slug:        r.Slug,
			Name:        r.Name,
			Author:      r.Username,
			Encoded:     encoded,
			WagoVersion: r.Version,
			WagoSemver:  r.VersionString,
			Source:      wago.SourceName,
		}
		if note := markup.Sanitize(r.Changelog); note != "" {
			update.Changelog = &types.Changelog{Text: note, Format: r.Changelog.Format}
		}
		updates = append(updates, update)
		logger.Info().Str("slug", r.Slug).Int("local", localVersion).Int("remote", r.Version).
			Msg("Aura has a newer version")
	}

	if len(updates) == 0 {
		logger.Info().Int("auras", len(order)).Msg("All auras are up to date")
		return nil, nil
	}

	merged := m.mergePrevious(flavor, updates, installed)
	path := m.DataPath(flavor)
	if err := filesystem.WriteFileAtomic(m.fs, path, RenderData(merged), 0644); err != nil {
		return nil, err
	}

	logger.Info().Int("updates", len(updates)).Int("entries", len(merged)).Str("path", path).
		Msg("Wrote companion data")
	return updates, nil
}

// mergePrevious adds entries of the existing data file that are still
// pending: the aura is still installed, it is not part of this run and the
// stored version is still newer than the installed one. Entries from this
// run always win. An unreadable data file is replaced.
func (m *Manager) mergePrevious(flavor types.Flavor, updates []types.AuraUpdate, installed map[string]int) []types.AuraUpdate {
	logger := logging.GetLogger("auras")
	path := m.DataPath(flavor)

	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("Could not read previous companion data")
		}
		return updates
	}
	previous, err := ReadData(path, data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Discarding unreadable companion data")
		return updates
	}

	current := mapset.NewThreadUnsafeSet[string]()
	for _, u := range updates {
		current.Add(u.Slug)
	}

	merged := append([]types.AuraUpdate(nil), updates...)
	for _, p := range previous {
		localVersion, stillInstalled := installed[p.Slug]
		if !stillInstalled || current.Contains(p.Slug) || p.WagoVersion <= localVersion {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
