package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/wowa/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for wowa
	EnvDataDir = "WOWA_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for wowa
	EnvConfigDir = "WOWA_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside wowa's own directories. These are not configurable.
const (
	AppDirName       = "wowa"
	ManifestFileName = "wowa.db"
	ConfigFileName   = "config.toml"
)

// Paths resolves wowa's own directories.
type Paths struct {
	dataDir   string
	configDir string
}

// New resolves the data and config directories, honoring WOWA_DATA_DIR and
// WOWA_CONFIG_DIR before falling back to XDG locations.
func New() (*Paths, error) {
	p := &Paths{}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.dataDir = ExpandHome(dir)
	} else {
		p.dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	for _, dir := range []*string{&p.dataDir, &p.configDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// DataDir returns the directory holding the manifest database.
func (p *Paths) DataDir() string { return p.dataDir }

// ConfigDir returns the directory holding config.toml.
func (p *Paths) ConfigDir() string { return p.configDir }

// ManifestPath returns the sqlite manifest database path.
func (p *Paths) ManifestPath() string { return filepath.Join(p.dataDir, ManifestFileName) }

// ConfigFilePath returns the user config file path.
func (p *Paths) ConfigFilePath() string { return filepath.Join(p.configDir, ConfigFileName) }

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user forms are left alone
	return path
}
