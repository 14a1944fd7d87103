package addons

import (
	"strings"

	"github.com/arthur-debert/wowa/pkg/curse"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/types"
)

// NormalizeLocator turns an addon page URL or a bare slug into a slug.
// URLs outside the provider's addon pages are rejected.
func NormalizeLocator(locator string) (string, error) {
	loc := strings.TrimSpace(locator)
	if rest, ok := strings.CutPrefix(loc, curse.URLPrefix); ok {
		loc = rest
	} else if strings.Contains(loc, "://") {
		return "", errors.Newf(errors.ErrInvalidLocator, "%s is not a CurseForge addon url", locator).
			WithDetail("expected", curse.URLPrefix)
	}

	// tolerate trailing paths such as /files or a trailing slash
	slug, _, _ := strings.Cut(strings.Trim(loc, "/"), "/")
	if slug == "" || strings.ContainsAny(slug, " ?#\\") {
		return "", errors.Newf(errors.ErrInvalidLocator, "cannot read an addon slug from %q", locator)
	}
	return strings.ToLower(slug), nil
}

// selectMod returns the search result whose slug equals slug exactly.
func selectMod(mods []curse.Mod, slug string) (*curse.Mod, error) {
	for i := range mods {
		if mods[i].Slug == slug {
			return &mods[i], nil
		}
	}
	return nil, errors.Newf(errors.ErrNotFound, "no addon with slug %q", slug).
		WithDetail("candidates", len(mods))
}

// selectFile picks the newest release-channel file built for flavor. Beta
// and alpha files are never considered.
func selectFile(mod *curse.Mod, flavor types.Flavor) (curse.FileIndex, error) {
	typeID := curse.GameVersionTypeID(flavor)

	var best curse.FileIndex
	found := false
	for _, fi := range mod.LatestFilesIndexes {
		if fi.GameVersionTypeID != typeID || fi.ReleaseType != curse.ReleaseTypeRelease {
			continue
		}
		if !found || fi.FileID > best.FileID {
			best, found = fi, true
		}
	}
	if !found {
		return curse.FileIndex{}, errors.Newf(errors.ErrNoCompatibleFile,
			"%s has no release file for %s", mod.Slug, flavor).
			WithDetail("slug", mod.Slug).
			WithDetail("flavor", flavor.String())
	}
	return best, nil
}

func authorName(mod *curse.Mod) string {
	if len(mod.Authors) == 0 || mod.Authors[0].Name == "" {
		return "N/A"
	}
	return mod.Authors[0].Name
}
