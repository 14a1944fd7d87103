package config

import (
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "WOWA_"

// Configuration keys.
const (
	KeyGameDir        = "game.dir"
	KeyGameFlavor     = "game.flavor"
	KeyCurseToken     = "curse.token"
	KeyCurseBaseURL   = "curse.base_url"
	KeyWagoBaseURL    = "wago.base_url"
	KeyHTTPTimeout    = "http.timeout"
	KeyHTTPRetries    = "http.retries"
	KeyWorkers        = "workers"
	KeySelfUpdateRepo = "selfupdate.repo"
)

// Worker pool bounds for UpdateAll.
const (
	MinWorkers     = 1
	MaxWorkers     = 16
	DefaultWorkers = 6
)

// secretKeys are masked by Dump.
var secretKeys = []string{KeyCurseToken}

// Options controls which layers Load reads.
type Options struct {
	// ConfigFile is the user config path. A missing file is not an error.
	ConfigFile string

	// Stored holds values persisted in the manifest, keyed by dotted path.
	Stored map[string]string

	// Overrides are applied last, typically from command line flags.
	Overrides map[string]interface{}

	// SkipEnv disables the WOWA_* environment layer.
	SkipEnv bool
}

// Config is the effective, merged configuration.
type Config struct {
	k *koanf.Koanf
}

// Load merges all configuration layers.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err == nil {
			if err := k.Load(file.Provider(opts.ConfigFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", opts.ConfigFile).
					WithDetail("path", opts.ConfigFile)
			}
			logger.Debug().Str("path", opts.ConfigFile).Msg("Loaded user config")
		}
	}

	if len(opts.Stored) > 0 {
		stored := make(map[string]interface{}, len(opts.Stored))
		for key, value := range opts.Stored {
			stored[key] = value
		}
		if err := k.Load(confmap.Provider(stored, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load stored config")
		}
	}

	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment config")
		}
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return &Config{k: k}, nil
}

// envKey maps WOWA_CURSE_BASE_URL to curse.base_url. Only the first
// underscore after the prefix becomes a path separator.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// IsKnownKey reports whether key is a leaf of the default configuration.
func IsKnownKey(key string) bool {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return false
	}
	if !k.Exists(key) {
		return false
	}
	_, isMap := k.Get(key).(map[string]interface{})
	return !isMap
}

// KnownKeys lists every configurable key.
func KnownKeys() []string {
	k := koanf.New(".")
	_ = k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser())
	return k.Keys()
}

// Get returns the raw value at key.
func (c *Config) Get(key string) interface{} { return c.k.Get(key) }

// String returns the string value at key.
func (c *Config) String(key string) string { return c.k.String(key) }

// GameDir is the game installation root, empty when unset.
func (c *Config) GameDir() string { return c.k.String(KeyGameDir) }

// Flavor is the default flavor. Unknown values fall back to retail.
func (c *Config) Flavor() types.Flavor {
	f, err := types.ParseFlavor(c.k.String(KeyGameFlavor))
	if err != nil {
		return types.Retail
	}
	return f
}

// CurseToken is the CurseForge API key.
func (c *Config) CurseToken() string { return c.k.String(KeyCurseToken) }

// CurseBaseURL is the CurseForge API root.
func (c *Config) CurseBaseURL() string { return strings.TrimRight(c.k.String(KeyCurseBaseURL), "/") }

// WagoBaseURL is the Wago data API root.
func (c *Config) WagoBaseURL() string { return strings.TrimRight(c.k.String(KeyWagoBaseURL), "/") }

// HTTPTimeout is the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	d := c.k.Duration(KeyHTTPTimeout)
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// HTTPRetries is the number of retries for idempotent reads.
func (c *Config) HTTPRetries() int {
	n := c.k.Int(KeyHTTPRetries)
	if n < 0 {
		return 0
	}
	return n
}

// Workers is the UpdateAll concurrency, clamped to [MinWorkers, MaxWorkers].
func (c *Config) Workers() int {
	return ClampWorkers(c.k.Int(KeyWorkers))
}

// SelfUpdateRepo is the owner/name of the release repository.
func (c *Config) SelfUpdateRepo() string { return c.k.String(KeySelfUpdateRepo) }

// ClampWorkers bounds n, treating zero or negative as the default.
func ClampWorkers(n int) int {
	switch {
	case n <= 0:
		return DefaultWorkers
	case n > MaxWorkers:
		return MaxWorkers
	default:
		return n
	}
}
