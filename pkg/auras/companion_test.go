// pkg/auras/companion_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: savestate parser
// PURPOSE: Test companion data rendering and reading it back

package auras_test

import (
	"testing"

	"github.com/arthur-debert/wowa/pkg/auras"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/savestate"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderData_RoundTrip(t *testing.T) {
	updates := []types.AuraUpdate{
		{Slug: "zeta", Name: "Zeta Bars", Author: "someone", Encoded: "!WA:2!abc+/=", WagoVersion: 3, WagoSemver: "1.0.2", Source: "Wago"},
		{Slug: "alpha", Name: `Alpha "quoted"`, Author: "x", Encoded: "!WA:2!def", WagoVersion: 14, WagoSemver: "2.0.0", Source: "Wago"},
		{Slug: "mid", Name: "Mid", Author: "y", Encoded: "!WA:2!ghi", WagoVersion: 1, WagoSemver: "0.1.0", Source: "Wago"},
	}

	data := auras.RenderData(updates)

	doc, err := savestate.ParseBytes("Data.lua", data)
	require.NoError(t, err)
	root, ok := doc.Global(auras.CompanionGlobal)
	require.True(t, ok)
	rootTable, _ := root.AsTable()
	wa, _ := rootTable.Get("WeakAuras")
	waTable, _ := wa.AsTable()
	slugsValue, _ := waTable.Get("slugs")
	slugs, ok := slugsValue.AsTable()
	require.True(t, ok)
	assert.Equal(t, 3, slugs.Len())

	for _, u := range updates {
		entry, ok := slugs.Get(u.Slug)
		require.True(t, ok, u.Slug)
		fields, _ := entry.AsTable()
		expect := map[string]string{
			"name":        u.Name,
			"author":      u.Author,
			"encoded":     u.Encoded,
			"wagoSemver":  u.WagoSemver,
			"source":      u.Source,
			"versionNote": "",
		}
		for key, want := range expect {
			v, ok := fields.Get(key)
			require.True(t, ok, "%s.%s", u.Slug, key)
			got, _ := v.AsString()
			assert.Equal(t, want, got, "%s.%s", u.Slug, key)
		}
	}

	back, err := auras.ReadData("Data.lua", data)
	require.NoError(t, err)
	require.Len(t, back, 3)
	// rendered in slug order
	assert.Equal(t, "alpha", back[0].Slug)
	assert.Equal(t, updates[1], back[0])
	assert.Equal(t, updates[2], back[1])
	assert.Equal(t, updates[0], back[2])
}

func TestRenderData_Empty(t *testing.T) {
	data := auras.RenderData(nil)
	assert.Contains(t, string(data), "WowaCompanionData = {")

	back, err := auras.ReadData("Data.lua", data)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestRenderData_AwkwardStrings(t *testing.T) {
	values := []string{
		"contains ]] double",
		"contains ]=] level one",
		"contains ]=] and ]==] and ]===] and ]====]",
		"ends with ]=",
		"ends with ]",
		"\nstarts with a newline",
		"\rstarts with a carriage return",
		"windows\r\nline ends",
		"lone\rcarriage return",
		"reversed\n\rline ends",
		"tab\tand \"quotes\" and \\ backslash",
		"",
	}

	var updates []types.AuraUpdate
	for i, v := range values {
		updates = append(updates, types.AuraUpdate{
			Slug:      string(rune('a' + i)),
			Name:      v,
			Changelog: &types.Changelog{Text: v},
		})
	}

	data := auras.RenderData(updates)
	// a raw CR would be rewritten to LF by the client's long-bracket reader
	assert.NotContains(t, string(data), "\r")

	back, err := auras.ReadData("Data.lua", data)
	require.NoError(t, err)
	require.Len(t, back, len(values))

	for i, v := range values {
		want := v
		assert.Equal(t, want, back[i].Name, "value %q", v)
		if want == "" {
			assert.Nil(t, back[i].Changelog)
			continue
		}
		require.NotNil(t, back[i].Changelog)
		assert.Equal(t, want, back[i].Changelog.Text)
	}
}

func TestReadData_UnexpectedLayout(t *testing.T) {
	_, err := auras.ReadData("Data.lua", []byte(`WowaCompanionData = { WeakAuras = {} }`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedSaveState))

	_, err = auras.ReadData("Data.lua", []byte(`print("hi")`))
	require.Error(t, err)
}
