// Package config loads wowa's layered configuration with koanf.
//
// Layers, lowest precedence first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user config file (config.toml in the wowa config dir)
//  3. values persisted in the manifest under the "config" namespace
//  4. WOWA_* environment variables
//  5. explicit overrides from command line flags
//
// Callers read values through the accessor methods on Config rather than
// raw koanf paths so that defaults and clamping live in one place.
package config
