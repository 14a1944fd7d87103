// pkg/auras/local_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test discovery of installed auras from the WeakAuras save-state

package auras_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/wowa/pkg/auras"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/testutil"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSaveState = `
WeakAurasSaved = {
	["dynamicIconCache"] = {},
	["displays"] = {
		["Raid Cooldowns"] = {
			["url"] = "https://wago.io/raidCD/12",
			["regionType"] = "dynamicgroup",
			["controlledChildren"] = { "Raid Cooldowns - Bar" },
		},
		["Raid Cooldowns - Bar"] = {
			["parent"] = "Raid Cooldowns",
			["url"] = "https://wago.io/raidCD/12",
		},
		["Orphan Child"] = {
			["parent"] = "Gone",
			["url"] = "https://wago.io/orphan/3",
		},
		["Hand Made"] = {
			["regionType"] = "icon",
		},
		["Elsewhere"] = {
			["url"] = "https://example.com/elsewhere/4",
		},
		["Missing Version"] = {
			["url"] = "https://wago.io/noversion",
		},
		["Interrupts"] = {
			["url"] = "https://wago.io/kick123/7",
			["desc"] = [[multi
line]],
		},
	},
	["login_squelch_time"] = 10,
}
`

func newManager(env *testutil.TestEnvironment, provider auras.Provider) *auras.Manager {
	return auras.NewManager(auras.Options{FS: env.FS, Layout: env.Layout, Provider: provider})
}

func TestListLocal_FiltersEntries(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WriteSaveState(types.Retail, "ACCOUNT1", sampleSaveState)
	// the account-wide SavedVariables folder is not a profile
	env.WriteFile(filepath.Join(env.Layout.AccountsDir(types.Retail), "SavedVariables", "Blizzard.lua"), "x = 1")

	local, err := newManager(env, nil).ListLocal(types.Retail)
	require.NoError(t, err)

	assert.Equal(t, []types.LocalAura{
		{Name: "Raid Cooldowns", Slug: "raidCD", Version: 12},
		{Name: "Interrupts", Slug: "kick123", Version: 7},
	}, local)
}

func TestListLocal_EmptyCases(t *testing.T) {
	tests := []struct {
		name  string
		setup func(env *testutil.TestEnvironment)
	}{
		{"no game folders", func(env *testutil.TestEnvironment) {}},
		{"only account-wide folder", func(env *testutil.TestEnvironment) {
			require.NoError(t, env.FS.MkdirAll(filepath.Join(env.Layout.AccountsDir(types.Retail), "SavedVariables"), 0755))
		}},
		{"account without weakauras", func(env *testutil.TestEnvironment) {
			require.NoError(t, env.FS.MkdirAll(filepath.Join(env.Layout.AccountsDir(types.Retail), "ACCOUNT1", "SavedVariables"), 0755))
		}},
		{"no displays imported from the provider", func(env *testutil.TestEnvironment) {
			env.WriteSaveState(types.Retail, "ACCOUNT1", `WeakAurasSaved = { displays = { ["Mine"] = { regionType = "text" } } }`)
		}},
		{"other flavor only", func(env *testutil.TestEnvironment) {
			env.WriteSaveState(types.Classic, "ACCOUNT1", sampleSaveState)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
			tt.setup(env)

			local, err := newManager(env, nil).ListLocal(types.Retail)
			require.NoError(t, err)
			assert.Empty(t, local)
		})
	}
}

func TestListLocal_Classic(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WriteSaveState(types.Classic, "ACCOUNT1", sampleSaveState)

	local, err := newManager(env, nil).ListLocal(types.Classic)
	require.NoError(t, err)
	assert.Len(t, local, 2)
}

func TestListLocal_AmbiguousProfile(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WriteSaveState(types.Retail, "ACCOUNT1", sampleSaveState)
	env.WriteSaveState(types.Retail, "ACCOUNT2", sampleSaveState)

	_, err := newManager(env, nil).ListLocal(types.Retail)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguousProfile))
	assert.Equal(t, []string{"ACCOUNT1", "ACCOUNT2"}, errors.GetErrorDetails(err)["accounts"])
}

func TestListLocal_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not lua data", `WeakAurasSaved = loadstring("return 1")()`},
		{"missing global", `SomethingElse = {}`},
		{"global is not a table", `WeakAurasSaved = "oops"`},
		{"missing displays", `WeakAurasSaved = { ["dbVersion"] = 70 }`},
		{"displays is not a table", `WeakAurasSaved = { displays = 3 }`},
		{"display is not a table", `WeakAurasSaved = { displays = { ["Broken"] = true } }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
			env.WriteSaveState(types.Retail, "ACCOUNT1", tt.content)

			_, err := newManager(env, nil).ListLocal(types.Retail)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedSaveState), "got %v", err)
		})
	}
}
