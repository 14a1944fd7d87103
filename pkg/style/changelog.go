package style

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// ChangelogRenderer renders aura changelogs for the terminal with glamour.
type ChangelogRenderer struct {
	Style string // "auto", a glamour style name, or a style file path
	Width int    // 0 keeps glamour's default wrapping
}

// NewChangelogRenderer returns a renderer with automatic style detection.
func NewChangelogRenderer() *ChangelogRenderer {
	return &ChangelogRenderer{Style: "auto"}
}

// Render returns text rendered as markdown. Any glamour failure falls back to
// the plain text.
func (r *ChangelogRenderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}

var defaultChangelogRenderer = NewChangelogRenderer()

// RenderChangelog renders text with the default changelog renderer.
func RenderChangelog(text string) string {
	return defaultChangelogRenderer.Render(text)
}
