package manifest

import (
	"context"
	"strings"
)

// Well-known top-level namespaces.
const (
	NamespaceAddons = "addons"
	NamespaceConfig = "config"
)

// separator joins key segments in the persisted path. It sorts below every
// printable character, which keeps prefix listing a simple range scan.
const separator = "\x1f"

// Key is a hierarchical manifest key.
type Key []string

// String renders the key for logs and messages.
func (k Key) String() string { return strings.Join(k, "/") }

func (k Key) path() string { return strings.Join(k, separator) }

func parsePath(p string) Key { return Key(strings.Split(p, separator)) }

// Entry is a key and its stored value.
type Entry struct {
	Key   Key
	Value string
}

// Store is the keyed persistence map used by the reconcilers.
type Store interface {
	// Get returns the value at key and whether it exists.
	Get(ctx context.Context, key Key) (string, bool, error)

	// Set upserts the value at key.
	Set(ctx context.Context, key Key, value string) error

	// Delete removes key, reporting whether it existed.
	Delete(ctx context.Context, key Key) (bool, error)

	// List returns every entry strictly below prefix, ordered by key.
	List(ctx context.Context, prefix Key) ([]Entry, error)

	// Close releases the underlying database.
	Close() error
}

// ConfigValues returns the values persisted under the config namespace,
// keyed by their dotted configuration key.
func ConfigValues(ctx context.Context, s Store) (map[string]string, error) {
	entries, err := s.List(ctx, Key{NamespaceConfig})
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		if len(e.Key) == 2 {
			values[e.Key[1]] = e.Value
		}
	}
	return values, nil
}

// ConfigKey builds the manifest key for a configuration value.
func ConfigKey(name string) Key { return Key{NamespaceConfig, name} }
