package style

import (
	"io"
	"strings"

	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/pterm/pterm"
)

// AddonTableHeader is the header row of the installed addon table.
var AddonTableHeader = []string{"Addon", "Name", "Version", "Flavor", "Author", "Directories"}

// AddonTableData builds the rows of the installed addon table.
func AddonTableData(addons []types.Addon) pterm.TableData {
	data := pterm.TableData{AddonTableHeader}
	for _, a := range addons {
		data = append(data, []string{
			SlugStyle.Render(a.ID),
			a.Name,
			VersionStyle.Render(a.Version),
			FlavorStyle(a.Flavor).Render(a.Flavor.String()),
			a.Author,
			strings.Join(a.Directories, ", "),
		})
	}
	return data
}

// WriteAddonTable writes addons as a table to w.
func WriteAddonTable(w io.Writer, addons []types.Addon) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithWriter(w).
		WithData(AddonTableData(addons)).
		Render()
}

// WriteAuraTable writes local auras as a table to w.
func WriteAuraTable(w io.Writer, auras []types.LocalAura) error {
	data := pterm.TableData{{"Aura", "Slug", "Version"}}
	for _, a := range auras {
		data = append(data, []string{a.Name, SlugStyle.Render(a.Slug), VersionStyle.Render(itoa(a.Version))})
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithWriter(w).
		WithData(data).
		Render()
}
