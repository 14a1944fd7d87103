package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type markupTag struct {
	pattern *regexp.Regexp
	style   lipgloss.Style
}

// MarkupParser renders [tag]text[/tag] markup with lipgloss styles.
type MarkupParser struct {
	tags map[string]markupTag
}

// NewMarkupParser creates a parser with the default tags.
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{tags: map[string]markupTag{}}
	for tag, style := range map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"info":    InfoStyle,
		"muted":   MutedStyle,
		"path":    PathStyle,
		"slug":    SlugStyle,
		"version": VersionStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"italic":  lipgloss.NewStyle().Italic(true),
	} {
		p.AddStyle(tag, style)
	}
	return p
}

// AddStyle registers or replaces a tag.
func (p *MarkupParser) AddStyle(tag string, style lipgloss.Style) {
	p.tags[tag] = markupTag{
		pattern: regexp.MustCompile(`(?s)\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`),
		style:   style,
	}
}

// Render replaces every known tag pair with its styled content. Nested tags
// are resolved inside out.
func (p *MarkupParser) Render(text string) string {
	result := text
	for {
		before := result
		for _, tag := range p.tags {
			result = tag.pattern.ReplaceAllStringFunc(result, func(match string) string {
				sub := tag.pattern.FindStringSubmatch(match)
				return tag.style.Render(sub[1])
			})
		}
		if result == before {
			return result
		}
	}
}

// Strip removes every known tag pair and keeps the content.
func (p *MarkupParser) Strip(text string) string {
	result := text
	for {
		before := result
		for _, tag := range p.tags {
			result = tag.pattern.ReplaceAllString(result, "$1")
		}
		if result == before {
			return result
		}
	}
}

// RenderTemplate substitutes {{key}} placeholders and then renders markup.
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return p.Render(result)
}

var defaultParser = NewMarkupParser()

// Render renders markup with the default parser.
func Render(text string) string {
	return defaultParser.Render(text)
}

// Strip removes markup with the default parser.
func Strip(text string) string {
	return defaultParser.Strip(text)
}

// RenderTemplate renders a template with the default parser.
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}
