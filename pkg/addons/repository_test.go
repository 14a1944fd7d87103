// pkg/addons/repository_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory manifest
// PURPOSE: Test addon record persistence keyed by flavor and slug

package addons_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/wowa/pkg/addons"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) (*addons.Repository, *manifest.SQLStore) {
	t.Helper()
	store, err := manifest.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return addons.NewRepository(store), store
}

func TestRepository_SaveGetList(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	records := []types.Addon{
		{ID: "weakauras", Name: "WeakAuras", Version: "5.1", Flavor: types.Retail, Directories: []string{"WeakAuras"}},
		{ID: "details", Name: "Details", Version: "1.0", Flavor: types.Retail, Directories: []string{"Details"}},
		{ID: "details", Name: "Details", Version: "0.9", Flavor: types.Classic, Directories: []string{"Details"}},
	}
	for _, r := range records {
		require.NoError(t, repo.Save(ctx, r))
	}

	got, err := repo.Get(ctx, "details", types.Classic)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0.9", got.Version)

	missing, err := repo.Get(ctx, "bagnon", types.Retail)
	require.NoError(t, err)
	assert.Nil(t, missing)

	retail := types.Retail
	list, err := repo.List(ctx, &retail)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "details", list[0].ID)
	assert.Equal(t, "weakauras", list[1].ID)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, types.Classic, all[0].Flavor)
}

func TestRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	require.NoError(t, repo.Save(ctx, types.Addon{ID: "details", Version: "1", Flavor: types.Retail}))
	require.NoError(t, repo.Save(ctx, types.Addon{ID: "details", Version: "2", Flavor: types.Retail}))

	list, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].Version)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	require.NoError(t, repo.Save(ctx, types.Addon{ID: "details", Flavor: types.Retail}))
	require.NoError(t, repo.Save(ctx, types.Addon{ID: "details", Flavor: types.Classic}))

	ok, err := repo.Delete(ctx, "details", types.Retail)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, "details", types.Retail)
	require.NoError(t, err)
	assert.False(t, ok)

	still, err := repo.Get(ctx, "details", types.Classic)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestRepository_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepository(t)

	require.NoError(t, store.Set(ctx, manifest.Key{"addons", "retail", "broken"}, "{not json"))

	_, err := repo.List(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStore))
}

func TestRepository_JSONShape(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepository(t)

	require.NoError(t, repo.Save(ctx, types.Addon{
		ID: "details", Name: "Details", Author: "Terciob", Version: "1.0",
		Flavor: types.Classic, Directories: []string{"Details"},
		Source: types.Source{Provider: "curse", ID: "61284", URL: "https://www.curseforge.com/wow/addons/details"},
	}))

	raw, ok, err := store.Get(ctx, manifest.Key{"addons", "classic", "details"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{
		"id": "details", "name": "Details", "author": "Terciob", "version": "1.0",
		"gameVersion": "classic", "directories": ["Details"],
		"source": {"provider": "curse", "id": "61284", "url": "https://www.curseforge.com/wow/addons/details"}
	}`, raw)
}
