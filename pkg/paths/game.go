package paths

import (
	"path/filepath"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/types"
)

// Game folder layout constants.
const (
	RetailFolder       = "_retail_"
	ClassicFolder      = "_classic_era_"
	SavedVariablesName = "SavedVariables"
)

// GameLayout maps a game installation root to per-flavor directories.
type GameLayout struct {
	root string
}

// NewGameLayout validates and normalizes the game installation root.
func NewGameLayout(root string) (GameLayout, error) {
	if root == "" {
		return GameLayout{}, errors.New(errors.ErrConfigMissing, "game directory is not configured (set game.dir)")
	}
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return GameLayout{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid game directory %q", root)
	}
	return GameLayout{root: abs}, nil
}

// Root returns the absolute game installation root.
func (g GameLayout) Root() string { return g.root }

// FlavorFolder returns the folder name a flavor is installed under.
func FlavorFolder(f types.Flavor) string {
	if f == types.Classic {
		return ClassicFolder
	}
	return RetailFolder
}

// FlavorDir returns <root>/<flavor folder>.
func (g GameLayout) FlavorDir(f types.Flavor) string {
	return filepath.Join(g.root, FlavorFolder(f))
}

// AddonsDir returns the flavor's Interface/AddOns directory.
func (g GameLayout) AddonsDir(f types.Flavor) string {
	return filepath.Join(g.FlavorDir(f), "Interface", "AddOns")
}

// AccountsDir returns the flavor's WTF/Account directory.
func (g GameLayout) AccountsDir(f types.Flavor) string {
	return filepath.Join(g.FlavorDir(f), "WTF", "Account")
}
