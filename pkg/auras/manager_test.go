// pkg/auras/manager_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: wagotest HTTP server, in-memory filesystem
// PURPOSE: Test aura sync: version gate, payload fetches and companion data generation

package auras_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/wowa/pkg/auras"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/retry"
	"github.com/arthur-debert/wowa/pkg/testutil"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/wago"
	"github.com/arthur-debert/wowa/pkg/wago/wagotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoAurasSaveState = `
WeakAurasSaved = {
	["displays"] = {
		["Raid Cooldowns"] = { ["url"] = "https://wago.io/raidCD/12" },
		["Interrupts"] = { ["url"] = "https://wago.io/kick123/7" },
	},
}
`

type syncFixture struct {
	env *testutil.TestEnvironment
	srv *wagotest.Server
	mgr *auras.Manager
}

func newSyncFixture(t *testing.T, saveState string) *syncFixture {
	t.Helper()
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	if saveState != "" {
		env.WriteSaveState(types.Retail, "ACCOUNT1", saveState)
	}
	srv := wagotest.New(t)
	client := wago.NewClient(
		wago.WithBaseURL(srv.URL),
		wago.WithRetryPolicy(retry.Policy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
	)
	return &syncFixture{env: env, srv: srv, mgr: newManager(env, client)}
}

func (f *syncFixture) companionPath(name string) string {
	return filepath.Join(f.env.AddonsDir(types.Retail), auras.CompanionName, name)
}

func (f *syncFixture) readData(t *testing.T) []types.AuraUpdate {
	t.Helper()
	back, err := auras.ReadData("Data.lua", []byte(f.env.ReadFile(f.mgr.DataPath(types.Retail))))
	require.NoError(t, err)
	return back
}

func TestSyncAll_NoLocalAuras(t *testing.T) {
	f := newSyncFixture(t, "")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.Equal(t, 0, f.srv.Count(wagotest.KindCheck))
	assert.False(t, f.env.Exists(f.companionPath("")))
}

func TestSyncAll_VersionGate(t *testing.T) {
	f := newSyncFixture(t, twoAurasSaveState)
	f.srv.AddAura(wago.RemoteAura{Slug: "raidCD", Name: "Raid Cooldowns", Version: 12}, "!WA:2!same")
	f.srv.AddAura(wago.RemoteAura{Slug: "kick123", Name: "Interrupts", Version: 6}, "!WA:2!older")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)

	assert.Empty(t, updates)
	assert.Equal(t, 1, f.srv.Count(wagotest.KindCheck))
	assert.Equal(t, 0, f.srv.Count(wagotest.KindRaw))
	assert.ElementsMatch(t, []string{"raidCD", "kick123"}, f.srv.Checked()[0])

	// companion is installed with an empty data file
	assert.True(t, f.env.Exists(f.companionPath("WowaCompanion.toc")))
	assert.True(t, f.env.Exists(f.companionPath("WowaCompanion.lua")))
	assert.Empty(t, f.readData(t))
}

func TestSyncAll_WritesUpdates(t *testing.T) {
	f := newSyncFixture(t, twoAurasSaveState)
	f.srv.AddAura(wago.RemoteAura{
		Slug: "raidCD", Name: "Raid Cooldowns", Username: "raider", Version: 15, VersionString: "2.1.0",
		Changelog: &types.Changelog{Text: "## Changes\n- **faster** bars", Format: types.ChangelogMarkdown},
	}, "!WA:2!newpayload")
	f.srv.AddAura(wago.RemoteAura{Slug: "kick123", Name: "Interrupts", Version: 7}, "!WA:2!current")
	f.srv.AddAura(wago.RemoteAura{Slug: "stranger", Name: "Not Installed", Version: 99}, "!WA:2!x")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	u := updates[0]
	assert.Equal(t, "raidCD", u.Slug)
	assert.Equal(t, "raider", u.Author)
	assert.Equal(t, "!WA:2!newpayload", u.Encoded)
	assert.Equal(t, 15, u.WagoVersion)
	assert.Equal(t, "2.1.0", u.WagoSemver)
	assert.Equal(t, "Wago", u.Source)
	require.NotNil(t, u.Changelog)
	assert.NotContains(t, u.Changelog.Text, "**")
	assert.NotContains(t, u.Changelog.Text, "##")
	assert.Contains(t, u.Changelog.Text, "faster")

	assert.Equal(t, []string{"raidCD"}, f.srv.RawSlugs())

	data := f.readData(t)
	require.Len(t, data, 1)
	assert.Equal(t, "raidCD", data[0].Slug)
	assert.Equal(t, "!WA:2!newpayload", data[0].Encoded)
	assert.Equal(t, u.Changelog.Text, data[0].Changelog.Text)
	assert.Contains(t, f.env.ReadFile(f.companionPath("WowaCompanion.lua")), `frame:SetScript("OnEvent"`)
}

func TestSyncAll_KeepsPendingEntriesFromEarlierRuns(t *testing.T) {
	f := newSyncFixture(t, `
WeakAurasSaved = {
	["displays"] = {
		["A"] = { ["url"] = "https://wago.io/auraA/1" },
		["B"] = { ["url"] = "https://wago.io/auraB/5" },
		["C"] = { ["url"] = "https://wago.io/auraC/2" },
	},
}
`)
	// an earlier run left entries for A (still pending), B (already
	// imported in game) and D (no longer installed)
	f.env.WriteFile(f.mgr.DataPath(types.Retail), string(auras.RenderData([]types.AuraUpdate{
		{Slug: "auraA", Name: "A", Encoded: "!WA:2!a2", WagoVersion: 2, Source: "Wago"},
		{Slug: "auraB", Name: "B", Encoded: "!WA:2!b5", WagoVersion: 5, Source: "Wago"},
		{Slug: "auraD", Name: "D", Encoded: "!WA:2!d9", WagoVersion: 9, Source: "Wago"},
	})))

	f.srv.AddAura(wago.RemoteAura{Slug: "auraA", Name: "A", Version: 2}, "!WA:2!a2")
	f.srv.AddAura(wago.RemoteAura{Slug: "auraB", Name: "B", Version: 5}, "!WA:2!b5")
	f.srv.AddAura(wago.RemoteAura{Slug: "auraC", Name: "C", Version: 3}, "!WA:2!c3")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)

	// this run's update set includes A again since it is still newer
	var slugs []string
	for _, u := range updates {
		slugs = append(slugs, u.Slug)
	}
	assert.Equal(t, []string{"auraA", "auraC"}, slugs)

	var written []string
	for _, u := range f.readData(t) {
		written = append(written, u.Slug)
	}
	assert.Equal(t, []string{"auraA", "auraC"}, written)
}

func TestSyncAll_MergesEntriesMissingFromCheck(t *testing.T) {
	f := newSyncFixture(t, `
WeakAurasSaved = {
	["displays"] = {
		["A"] = { ["url"] = "https://wago.io/auraA/1" },
		["C"] = { ["url"] = "https://wago.io/auraC/2" },
	},
}
`)
	// A was found earlier but the provider no longer reports it
	f.env.WriteFile(f.mgr.DataPath(types.Retail), string(auras.RenderData([]types.AuraUpdate{
		{Slug: "auraA", Name: "A", Encoded: "!WA:2!a2", WagoVersion: 2, Source: "Wago"},
	})))
	f.srv.AddAura(wago.RemoteAura{Slug: "auraC", Name: "C", Version: 3}, "!WA:2!c3")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	data := f.readData(t)
	require.Len(t, data, 2)
	assert.Equal(t, "auraA", data[0].Slug)
	assert.Equal(t, "!WA:2!a2", data[0].Encoded)
	assert.Equal(t, "auraC", data[1].Slug)
}

func TestSyncAll_ExistingCompanionIsNotRewritten(t *testing.T) {
	f := newSyncFixture(t, twoAurasSaveState)
	f.env.WriteFile(f.companionPath("WowaCompanion.toc"), "## custom")
	f.srv.AddAura(wago.RemoteAura{Slug: "raidCD", Version: 13}, "!WA:2!p")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	assert.Equal(t, "## custom", f.env.ReadFile(f.companionPath("WowaCompanion.toc")))
	assert.False(t, f.env.Exists(f.companionPath("WowaCompanion.lua")))
	assert.Len(t, f.readData(t), 1)
}

func TestSyncAll_PayloadFailureLeavesDataUntouched(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WriteSaveState(types.Retail, "ACCOUNT1", twoAurasSaveState)
	provider := &stubProvider{
		remote: []wago.RemoteAura{{Slug: "raidCD", Version: 13}, {Slug: "kick123", Version: 9}},
		rawErr: errors.New(errors.ErrProvider, "payload unavailable"),
	}
	mgr := newManager(env, provider)
	env.WriteFile(mgr.DataPath(types.Retail), "-- previous")

	_, err := mgr.SyncAll(context.Background(), types.Retail)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProvider))
	assert.Equal(t, []string{"raidCD"}, provider.rawCalls)
	assert.Equal(t, "-- previous", env.ReadFile(mgr.DataPath(types.Retail)))
}

type stubProvider struct {
	remote   []wago.RemoteAura
	rawErr   error
	rawCalls []string
}

func (s *stubProvider) CheckVersions(_ context.Context, _ []string) ([]wago.RemoteAura, error) {
	return s.remote, nil
}

func (s *stubProvider) RawEncoded(_ context.Context, slug string) (string, error) {
	s.rawCalls = append(s.rawCalls, slug)
	if s.rawErr != nil {
		return "", s.rawErr
	}
	return "!WA:2!" + slug, nil
}

func TestSyncAll_CancelledContext(t *testing.T) {
	f := newSyncFixture(t, twoAurasSaveState)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.mgr.SyncAll(ctx, types.Retail)
	require.Error(t, err)
	assert.Equal(t, 0, f.srv.Count(wagotest.KindRaw))
}

func TestSyncAll_DuplicateImportsCheckedOnce(t *testing.T) {
	f := newSyncFixture(t, `
WeakAurasSaved = {
	["displays"] = {
		["Copy 1"] = { ["url"] = "https://wago.io/dup/4" },
		["Copy 2"] = { ["url"] = "https://wago.io/dup/2" },
	},
}
`)
	f.srv.AddAura(wago.RemoteAura{Slug: "dup", Version: 3}, "!WA:2!dup")

	updates, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.NoError(t, err)

	assert.Equal(t, []string{"dup"}, f.srv.Checked()[0])
	// the older copy still needs version 3
	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].WagoVersion)
}

func TestSyncAll_AmbiguousProfileMakesNoRequests(t *testing.T) {
	f := newSyncFixture(t, twoAurasSaveState)
	f.env.WriteSaveState(types.Retail, "ACCOUNT2", twoAurasSaveState)

	_, err := f.mgr.SyncAll(context.Background(), types.Retail)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguousProfile))
	assert.Equal(t, 0, f.srv.Count(wagotest.KindCheck))
}
