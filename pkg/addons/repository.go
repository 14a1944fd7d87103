package addons

import (
	"context"
	"encoding/json"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/types"
)

// Repository stores installed addon records in the manifest under
// addons/<flavor>/<slug>.
type Repository struct {
	store manifest.Store
}

// NewRepository returns a repository backed by store.
func NewRepository(store manifest.Store) *Repository {
	return &Repository{store: store}
}

func recordKey(slug string, flavor types.Flavor) manifest.Key {
	return manifest.Key{manifest.NamespaceAddons, flavor.String(), slug}
}

// Get returns the record for (slug, flavor), or nil when none is tracked.
func (r *Repository) Get(ctx context.Context, slug string, flavor types.Flavor) (*types.Addon, error) {
	raw, ok, err := r.store.Get(ctx, recordKey(slug, flavor))
	if err != nil || !ok {
		return nil, err
	}
	return decodeRecord(raw)
}

// Save upserts addon, replacing any record with the same slug and flavor.
func (r *Repository) Save(ctx context.Context, addon types.Addon) error {
	data, err := json.Marshal(addon)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStore, "failed to encode addon %s", addon.ID)
	}
	return r.store.Set(ctx, recordKey(addon.ID, addon.Flavor), string(data))
}

// Delete removes the record for (slug, flavor), reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, slug string, flavor types.Flavor) (bool, error) {
	return r.store.Delete(ctx, recordKey(slug, flavor))
}

// List returns the records of one flavor, or of every flavor when flavor
// is nil, ordered by flavor then slug.
func (r *Repository) List(ctx context.Context, flavor *types.Flavor) ([]types.Addon, error) {
	prefix := manifest.Key{manifest.NamespaceAddons}
	if flavor != nil {
		prefix = append(prefix, flavor.String())
	}

	entries, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	addons := make([]types.Addon, 0, len(entries))
	for _, e := range entries {
		addon, err := decodeRecord(e.Value)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStore, "corrupt record at %s", e.Key)
		}
		addons = append(addons, *addon)
	}
	return addons, nil
}

func decodeRecord(raw string) (*types.Addon, error) {
	var addon types.Addon
	if err := json.Unmarshal([]byte(raw), &addon); err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "failed to decode addon record")
	}
	return &addon, nil
}
