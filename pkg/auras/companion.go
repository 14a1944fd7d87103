package auras

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/savestate"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/spf13/afero"
)

// Companion addon layout.
const (
	CompanionName   = "WowaCompanion"
	CompanionData   = "Data.lua"
	CompanionGlobal = "WowaCompanionData"
)

//go:embed companion/WowaCompanion.toc.tmpl
var tocTemplateContent string

//go:embed companion/WowaCompanion.lua
var companionLua string

var tocTemplate = template.Must(template.New("toc").Parse(tocTemplateContent))

// interfaceVersions are the client interface numbers written to the toc.
var interfaceVersions = map[types.Flavor]string{
	types.Retail:  "100205",
	types.Classic: "11502",
}

func (m *Manager) companionDir(flavor types.Flavor) string {
	return filepath.Join(m.layout.AddonsDir(flavor), CompanionName)
}

// DataPath returns the companion Data.lua path for flavor.
func (m *Manager) DataPath(flavor types.Flavor) string {
	return filepath.Join(m.companionDir(flavor), CompanionData)
}

// ensureCompanion installs the companion addon unless its directory already
// exists. An existing install is never rewritten here.
func (m *Manager) ensureCompanion(flavor types.Flavor) (bool, error) {
	dir := m.companionDir(flavor)
	exists, err := filesystem.DirExists(m.fs, dir)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrInstall, "failed to check %s", dir)
	}
	if exists {
		return false, nil
	}

	var toc bytes.Buffer
	if err := tocTemplate.Execute(&toc, struct{ Interface string }{interfaceVersions[flavor]}); err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to render companion toc")
	}

	files := []struct {
		name string
		data []byte
	}{
		{CompanionData, RenderData(nil)},
		{CompanionName + ".toc", toc.Bytes()},
		{CompanionName + ".lua", []byte(companionLua)},
	}
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrInstall, "failed to create %s", dir)
	}
	for _, f := range files {
		if err := afero.WriteFile(m.fs, filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return false, errors.Wrapf(err, errors.ErrInstall, "failed to write %s", f.name)
		}
	}

	logger := logging.GetLogger("auras")
	logger.Info().Str("dir", dir).Msg("Installed companion addon")
	return true, nil
}

// RenderData renders the companion data file embedding updates, ordered by
// slug. Every string is written as a long-bracket literal.
func RenderData(updates []types.AuraUpdate) []byte {
	sorted := append([]types.AuraUpdate(nil), updates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slug < sorted[j].Slug })

	var b strings.Builder
	b.WriteString(CompanionGlobal + " = {\n")
	b.WriteString("    WeakAuras = {\n")
	b.WriteString("        slugs = {\n")
	for _, u := range sorted {
		fmt.Fprintf(&b, "            [%s] = {\n", quote(u.Slug))
		field := func(name, value string) {
			fmt.Fprintf(&b, "                %s = %s,\n", name, longString(value))
		}
		field("name", u.Name)
		field("author", u.Author)
		field("encoded", u.Encoded)
		field("wagoVersion", strconv.Itoa(u.WagoVersion))
		field("wagoSemver", u.WagoSemver)
		field("source", u.Source)
		field("versionNote", changelogText(u.Changelog))
		b.WriteString("            },\n")
	}
	b.WriteString("        },\n")
	b.WriteString("    },\n")
	b.WriteString("}\n")
	return []byte(b.String())
}

func changelogText(c *types.Changelog) string {
	if c == nil {
		return ""
	}
	return c.Text
}

// ReadData parses a companion data file back into update records. Version
// notes come back as already sanitized text with no format.
func ReadData(filename string, data []byte) ([]types.AuraUpdate, error) {
	doc, err := savestate.ParseBytes(filename, data)
	if err != nil {
		return nil, err
	}

	slugs, err := lookupTable(doc, CompanionGlobal, "WeakAuras", "slugs")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "unexpected layout in %s", filename)
	}

	var updates []types.AuraUpdate
	for _, entry := range slugs.Entries() {
		slug, ok := entry.Key.AsString()
		if !ok {
			continue
		}
		fields, ok := entry.Value.AsTable()
		if !ok {
			continue
		}
		u := types.AuraUpdate{
			Slug:       slug,
			Name:       stringField(fields, "name"),
			Author:     stringField(fields, "author"),
			Encoded:    stringField(fields, "encoded"),
			WagoSemver: stringField(fields, "wagoSemver"),
			Source:     stringField(fields, "source"),
		}
		if v, ok := fields.Get("wagoVersion"); ok {
			if n, isNum := v.AsInt(); isNum {
				u.WagoVersion = n
			} else if s, isStr := v.AsString(); isStr {
				u.WagoVersion, _ = strconv.Atoi(strings.TrimSpace(s))
			}
		}
		if note := stringField(fields, "versionNote"); note != "" {
			u.Changelog = &types.Changelog{Text: note}
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func lookupTable(doc *savestate.Document, global string, path ...string) (*savestate.Table, error) {
	v, ok := doc.Global(global)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", global)
	}
	t, ok := v.AsTable()
	if !ok {
		return nil, fmt.Errorf("%s is not a table", global)
	}
	name := global
	for _, key := range path {
		name += "." + key
		v, ok = t.Get(key)
		if !ok {
			return nil, fmt.Errorf("%s is not defined", name)
		}
		if t, ok = v.AsTable(); !ok {
			return nil, fmt.Errorf("%s is not a table", name)
		}
	}
	return t, nil
}

func stringField(t *savestate.Table, key string) string {
	v, _ := t.Get(key)
	s, _ := v.AsString()
	return s
}

// maxLongLevel is the deepest long-bracket level tried before falling back
// to a quoted string.
const maxLongLevel = 4

// longString wraps s in the shallowest long bracket, starting at [=[, whose
// closing delimiter does not occur inside s. The client reads any CR, CRLF
// or LFCR inside a long bracket as LF, so values holding a CR are written as
// quoted strings, as are values that need a deeper bracket.
func longString(s string) string {
	if strings.IndexByte(s, '\r') >= 0 {
		return quote(s)
	}
	for level := 1; level <= maxLongLevel; level++ {
		eq := strings.Repeat("=", level)
		closing := "]" + eq + "]"
		if strings.Index(s+closing, closing) != len(s) {
			continue
		}
		// a newline right after the opening bracket is dropped by the reader
		if strings.HasPrefix(s, "\n") {
			s = "\n" + s
		}
		return "[" + eq + "[" + s + closing
	}
	return quote(s)
}

// quote writes s as a double-quoted string using decimal escapes for
// control bytes.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\%03d`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
