package display

import (
	"fmt"
	"strings"
)

// The Lines functions describe a result as lines of style markup. The text
// renderer strips the tags and the terminal renderer styles them.

// InstallLines describes an install outcome.
func InstallLines(r *InstallResult) []string {
	a := r.Addon
	switch {
	case !r.Changed:
		return []string{fmt.Sprintf("[slug]%s[/slug] is already up-to-date ([version]%s[/version])", a.ID, a.Version)}
	case r.PreviousVersion != "":
		return []string{fmt.Sprintf("Updated [slug]%s[/slug] ([version]%s[/version] -> [version]%s[/version])",
			a.ID, r.PreviousVersion, a.Version)}
	default:
		return []string{fmt.Sprintf("Installed [slug]%s[/slug] [version]%s[/version] for %s into %s",
			a.ID, a.Version, a.Flavor, strings.Join(a.Directories, ", "))}
	}
}

// RemoveLines describes a removed addon.
func RemoveLines(r *RemoveResult) []string {
	return []string{fmt.Sprintf("Removed [slug]%s[/slug] (%s): %s",
		r.Addon.ID, r.Addon.Flavor, strings.Join(r.Addon.Directories, ", "))}
}

// UpdateLines describes an update run without changelogs.
func UpdateLines(r *UpdateResult) []string {
	var lines []string
	for _, u := range r.Updated {
		lines = append(lines, InstallLines(&u)...)
	}
	for _, f := range r.Failed {
		lines = append(lines, fmt.Sprintf("[error]Failed[/error] [slug]%s[/slug] (%s): %s", f.ID, f.Flavor, f.Error))
	}
	switch {
	case len(r.Updated) == 0 && len(r.Failed) == 0 && len(r.UpToDate) == 0:
		lines = append(lines, "No addons installed.")
	case len(r.Updated) == 0 && len(r.Failed) == 0:
		lines = append(lines, "All addons are up-to-date.")
	default:
		lines = append(lines, fmt.Sprintf("[muted]%d updated, %d up-to-date, %d failed[/muted]",
			len(r.Updated), len(r.UpToDate), len(r.Failed)))
	}

	if r.AurasSkipped {
		return lines
	}
	if len(r.Auras) == 0 {
		return append(lines, "All weak auras are up-to-date.")
	}
	lines = append(lines, fmt.Sprintf("Updated %d weak auras", len(r.Auras)))
	for _, a := range r.Auras {
		lines = append(lines, fmt.Sprintf("  [slug]%s[/slug] %s -> [version]%s[/version]", a.Slug, a.Name, auraVersion(a.WagoSemver, a.WagoVersion)))
	}
	return lines
}

// AuraLines describes local auras when there are none to tabulate.
func AuraLines(r *AuraList) []string {
	if len(r.Auras) == 0 {
		return []string{fmt.Sprintf("No weak auras from wago.io found for %s.", r.Flavor)}
	}
	lines := make([]string, 0, len(r.Auras))
	for _, a := range r.Auras {
		lines = append(lines, fmt.Sprintf("%s [slug]%s[/slug] [version]%d[/version]", a.Name, a.Slug, a.Version))
	}
	return lines
}

// AddonLines describes installed addons one per line.
func AddonLines(r *AddonList) []string {
	if len(r.Addons) == 0 {
		return []string{"No addons installed."}
	}
	lines := make([]string, 0, len(r.Addons))
	for _, a := range r.Addons {
		lines = append(lines, fmt.Sprintf("[slug]%s[/slug]\t%s\t[version]%s[/version]\t%s", a.ID, a.Name, a.Version, a.Flavor))
	}
	return lines
}

// ConfigLines describes a single config value.
func ConfigLines(r *ConfigValue) []string {
	if r.Saved {
		return []string{fmt.Sprintf("Set [bold]%s[/bold] to %s", r.Key, r.Value)}
	}
	return []string{r.Value}
}

// SelfUpdateLines describes a self-update run.
func SelfUpdateLines(r *SelfUpdateResult) []string {
	if !r.Updated {
		return []string{fmt.Sprintf("wowa is already up-to-date ([version]%s[/version])", r.CurrentVersion)}
	}
	return []string{fmt.Sprintf("Updated wowa [version]%s[/version] -> [version]%s[/version] at [path]%s[/path]",
		r.CurrentVersion, r.LatestVersion, r.Path)}
}

func auraVersion(semver string, version int) string {
	if semver != "" {
		return semver
	}
	return fmt.Sprintf("%d", version)
}
