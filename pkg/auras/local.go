package auras

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/paths"
	"github.com/arthur-debert/wowa/pkg/savestate"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/wago"
	"github.com/spf13/afero"
)

// Save-state names written by the WeakAuras addon.
const (
	SaveStateFile   = "WeakAuras.lua"
	SaveStateGlobal = "WeakAurasSaved"
	displaysKey     = "displays"
)

// saveStatePath returns the WeakAuras save-state file of the single account
// profile, or "" when there is no account yet.
func (m *Manager) saveStatePath(flavor types.Flavor) (string, error) {
	accountsDir := m.layout.AccountsDir(flavor)
	dirs, err := filesystem.ListDirs(m.fs, accountsDir)
	if err != nil {
		return "", err
	}

	var accounts []string
	for _, d := range dirs {
		if d != paths.SavedVariablesName {
			accounts = append(accounts, d)
		}
	}

	switch len(accounts) {
	case 0:
		return "", nil
	case 1:
		return filepath.Join(accountsDir, accounts[0], paths.SavedVariablesName, SaveStateFile), nil
	default:
		return "", errors.Newf(errors.ErrAmbiguousProfile,
			"found %d accounts under %s, only a single account is supported", len(accounts), accountsDir).
			WithDetail("accounts", accounts)
	}
}

// ListLocal returns the top-level auras imported from the aura provider, in
// save-state order. Grouped children and auras without a provider URL are
// skipped.
func (m *Manager) ListLocal(flavor types.Flavor) ([]types.LocalAura, error) {
	logger := logging.GetLogger("auras").With().Str("flavor", flavor.String()).Logger()

	path, err := m.saveStatePath(flavor)
	if err != nil {
		return nil, err
	}
	if path == "" {
		logger.Debug().Msg("No account profile found")
		return nil, nil
	}

	data, err := afero.ReadFile(m.fs, path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("No WeakAuras save-state found")
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to read %s", path)
	}

	doc, err := savestate.ParseBytes(path, data)
	if err != nil {
		return nil, err
	}
	displays, err := displaysTable(doc, path)
	if err != nil {
		return nil, err
	}

	var auras []types.LocalAura
	for _, entry := range displays.Entries() {
		display, ok := entry.Value.AsTable()
		if !ok {
			return nil, malformed(path, "display entry is a %s, not a table", entry.Value.Kind())
		}
		name, ok := entry.Key.AsString()
		if !ok {
			continue
		}
		if _, hasParent := display.Get("parent"); hasParent {
			continue
		}
		urlValue, _ := display.Get("url")
		url, ok := urlValue.AsString()
		if !ok {
			continue
		}
		slug, version, ok := wago.ParseURL(url)
		if !ok {
			continue
		}
		auras = append(auras, types.LocalAura{Name: name, Slug: slug, Version: version})
	}

	logger.Debug().Int("displays", displays.Len()).Int("tracked", len(auras)).Msg("Read local auras")
	return auras, nil
}

func displaysTable(doc *savestate.Document, path string) (*savestate.Table, error) {
	root, ok := doc.Global(SaveStateGlobal)
	if !ok {
		return nil, malformed(path, "%s is not defined", SaveStateGlobal)
	}
	rootTable, ok := root.AsTable()
	if !ok {
		return nil, malformed(path, "%s is a %s, not a table", SaveStateGlobal, root.Kind())
	}
	displays, ok := rootTable.Get(displaysKey)
	if !ok {
		return nil, malformed(path, "%s.%s is not defined", SaveStateGlobal, displaysKey)
	}
	displaysTable, ok := displays.AsTable()
	if !ok {
		return nil, malformed(path, "%s.%s is a %s, not a table", SaveStateGlobal, displaysKey, displays.Kind())
	}
	return displaysTable, nil
}

func malformed(path, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrMalformedSaveState, format, args...).WithDetail("path", path)
}
