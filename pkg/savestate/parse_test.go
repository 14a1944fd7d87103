// pkg/savestate/parse_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test literal evaluation of SavedVariables files

package savestate_test

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/savestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weakAurasSample = `
WeakAurasSaved = {
	["dynamicIconCache"] = {
	},
	["displays"] = {
		["Raid Cooldowns"] = {
			["url"] = "https://wago.io/raidcds/12",
			["semver"] = "1.0.11",
			["load"] = {
				["use_combat"] = true,
			},
			["controlledChildren"] = {
				"Raid Cooldowns - Bars", -- [1]
			},
		},
		["Raid Cooldowns - Bars"] = {
			["parent"] = "Raid Cooldowns",
			["url"] = "https://wago.io/raidcds/12",
		},
	},
	["login_squelch_time"] = 10,
	["editor_font_size"] = 12,
}
WeakAurasArchive = nil
`

func TestParse_WeakAurasShape(t *testing.T) {
	doc, err := savestate.ParseString("WeakAuras.lua", weakAurasSample)
	require.NoError(t, err)

	root, ok := doc.Global("WeakAurasSaved")
	require.True(t, ok)
	rootTable, ok := root.AsTable()
	require.True(t, ok)

	displaysValue, ok := rootTable.Get("displays")
	require.True(t, ok)
	displays, ok := displaysValue.AsTable()
	require.True(t, ok)
	require.Equal(t, 2, displays.Len())

	// source order is kept
	first := displays.Entries()[0]
	name, _ := first.Key.AsString()
	assert.Equal(t, "Raid Cooldowns", name)

	aura, _ := first.Value.AsTable()
	url, _ := aura.Get("url")
	s, ok := url.AsString()
	require.True(t, ok)
	assert.Equal(t, "https://wago.io/raidcds/12", s)

	children, _ := aura.Get("controlledChildren")
	childTable, _ := children.AsTable()
	child, ok := childTable.Index(1)
	require.True(t, ok)
	childName, _ := child.AsString()
	assert.Equal(t, "Raid Cooldowns - Bars", childName)

	size, _ := rootTable.Get("editor_font_size")
	n, ok := size.AsInt()
	require.True(t, ok)
	assert.Equal(t, 12, n)

	// nil assignments define nothing
	_, ok = doc.Global("WeakAurasArchive")
	assert.False(t, ok)
}

func TestParse_Literals(t *testing.T) {
	doc, err := savestate.ParseString("test.lua", `
		Values = {
			1, 2.5, -3, 0x1F, 1e3, -0x10,
			true, false,
			'single', "double",
			[[long
string]],
			[==[with ]] inside]==],
			name = "named";
			[10] = "ten",
			[true] = "yes",
		}
	`)
	require.NoError(t, err)

	v, _ := doc.Global("Values")
	tbl, ok := v.AsTable()
	require.True(t, ok)

	expectNumber := func(i int, want float64) {
		t.Helper()
		val, ok := tbl.Index(i)
		require.True(t, ok)
		n, ok := val.AsNumber()
		require.True(t, ok)
		assert.Equal(t, want, n)
	}
	expectNumber(1, 1)
	expectNumber(2, 2.5)
	expectNumber(3, -3)
	expectNumber(4, 31)
	expectNumber(5, 1000)
	expectNumber(6, -16)

	b, _ := tbl.Index(7)
	bv, ok := b.AsBool()
	assert.True(t, ok)
	assert.True(t, bv)

	expectString := func(i int, want string) {
		t.Helper()
		val, ok := tbl.Index(i)
		require.True(t, ok)
		s, ok := val.AsString()
		require.True(t, ok)
		assert.Equal(t, want, s)
	}
	expectString(9, "single")
	expectString(11, "long\nstring")
	expectString(12, "with ]] inside")

	named, _ := tbl.Get("name")
	s, _ := named.AsString()
	assert.Equal(t, "named", s)

	ten, ok := tbl.Index(10)
	require.True(t, ok)
	s, _ = ten.AsString()
	assert.Equal(t, "ten", s, "explicit key overrides the positional entry")
}

func TestParse_StringEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"newline", `"a\nb"`, "a\nb"},
		{"quotes", `"say \"hi\" it\'s"`, `say "hi" it's`},
		{"backslash", `"C:\\WoW"`, `C:\WoW`},
		{"decimal_pipe", `"\124cffff0000red\124r"`, "|cffff0000red|r"},
		{"hex", `"\x41\x42"`, "AB"},
		{"unicode", `"\u{48}\u{e9}"`, "Hé"},
		{"skip_whitespace", "\"a\\z   \n  b\"", "ab"},
		{"escaped_newline", "\"a\\\nb\"", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := savestate.ParseString("test.lua", "X = "+tt.src)
			require.NoError(t, err)
			v, _ := doc.Global("X")
			s, ok := v.AsString()
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestParse_Comments(t *testing.T) {
	doc, err := savestate.ParseString("test.lua", `
-- line comment
--[[ block
comment ]]
X = { -- trailing
	1, --[==[ inline ]==] 2,
}
`)
	require.NoError(t, err)
	v, _ := doc.Global("X")
	tbl, _ := v.AsTable()
	assert.Equal(t, 2, tbl.Len())
}

func TestParse_Overflow(t *testing.T) {
	doc, err := savestate.ParseString("test.lua", "X = 1e999")
	require.NoError(t, err)
	v, _ := doc.Global("X")
	n, _ := v.AsNumber()
	assert.True(t, math.IsInf(n, 1))
}

func TestParse_RejectsCode(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"function_call", `X = os.execute("rm -rf /")`},
		{"call_statement", `print("hi")`},
		{"variable_reference", `X = Y`},
		{"arithmetic", `X = 1 + 2`},
		{"function_literal", `X = function() end`},
		{"unterminated_table", `X = { 1, 2`},
		{"nil_key", `X = { [nil] = 1 }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := savestate.ParseString("evil.lua", tt.src)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedSaveState))
		})
	}
}

func TestParse_Reader(t *testing.T) {
	doc, err := savestate.Parse("r.lua", strings.NewReader("\xef\xbb\xbfX = 'bom'"))
	require.NoError(t, err)
	v, _ := doc.Global("X")
	s, _ := v.AsString()
	assert.Equal(t, "bom", s)
	assert.Len(t, doc.Globals(), 1)
}

func TestTable_SetNilRemoves(t *testing.T) {
	tbl := savestate.NewTable()
	tbl.Set(savestate.String("a"), savestate.Number(1))
	tbl.Set(savestate.String("b"), savestate.Number(2))
	tbl.Set(savestate.String("a"), savestate.Nil)

	_, ok := tbl.Get("a")
	assert.False(t, ok)
	v, ok := tbl.Get("b")
	require.True(t, ok)
	n, _ := v.AsNumber()
	assert.Equal(t, 2.0, n)
	assert.Equal(t, 1, tbl.Len())
}

func TestParse_DeepLongBrackets(t *testing.T) {
	doc, err := savestate.ParseString("test.lua", "X = [======[a ]====] b]======]\n--[=======[ c ]=======]")
	require.NoError(t, err)
	v, _ := doc.Global("X")
	s, _ := v.AsString()
	assert.Equal(t, "a ]====] b", s)
}

func TestParse_LongStringLineEnds(t *testing.T) {
	doc, err := savestate.ParseString("test.lua", "X = [[\r\na\r\nb\rc\n\rd\n\ne]]")
	require.NoError(t, err)
	v, _ := doc.Global("X")
	s, _ := v.AsString()
	assert.Equal(t, "a\nb\nc\nd\n\ne", s)
}

func TestParse_LexErrorsCarryPosition(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unterminated_string", "X = {\n  \"open\n}", "test.lua:2:3"},
		{"unterminated_long_string", "X = [==[ never closed ]=]", "test.lua:1:5"},
		{"stray_operator", "X = {\n\n  1 + 2 }", "test.lua:3:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := savestate.ParseString("test.lua", tt.src)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedSaveState))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// largeSaveState builds a WeakAuras save-state of roughly size bytes with
// displays shaped like real exports.
func largeSaveState(size int) string {
	var b strings.Builder
	b.Grow(size + 4096)
	b.WriteString("WeakAurasSaved = {\n\t[\"displays\"] = {\n")
	payload := strings.Repeat("abcdefghij\\\"", 200)
	for i := 0; b.Len() < size; i++ {
		fmt.Fprintf(&b, "\t\t[\"Aura %d\"] = {\n", i)
		fmt.Fprintf(&b, "\t\t\t[\"url\"] = \"https://wago.io/aura%d/%d\",\n", i, i%50+1)
		fmt.Fprintf(&b, "\t\t\t[\"desc\"] = [=[%s]]%s]=],\n", payload, payload)
		fmt.Fprintf(&b, "\t\t\t[\"custom\"] = \"%s\",\n", payload)
		b.WriteString("\t\t\t[\"load\"] = { [\"use_combat\"] = true, [\"size\"] = { [\"multi\"] = {}, }, },\n")
		b.WriteString("\t\t\t[\"color\"] = { 1, 0.5, 0.25, 1, },\n")
		b.WriteString("\t\t}, -- [" + fmt.Sprint(i) + "]\n")
	}
	b.WriteString("\t},\n}\n")
	return b.String()
}

func TestParse_LargeSaveState(t *testing.T) {
	if testing.Short() {
		t.Skip("large input")
	}
	src := largeSaveState(16 << 20)

	start := time.Now()
	doc, err := savestate.ParseString("WeakAuras.lua", src)
	elapsed := time.Since(start)
	require.NoError(t, err)
	t.Logf("parsed %d bytes in %s", len(src), elapsed)

	root, _ := doc.Global("WeakAurasSaved")
	rootTable, _ := root.AsTable()
	displays, _ := rootTable.Get("displays")
	displaysTable, ok := displays.AsTable()
	require.True(t, ok)
	assert.Greater(t, displaysTable.Len(), 1000)
	assert.Less(t, elapsed, 5*time.Second)
}

func BenchmarkParse(b *testing.B) {
	src := largeSaveState(4 << 20)
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := savestate.ParseString("WeakAuras.lua", src); err != nil {
			b.Fatal(err)
		}
	}
}
