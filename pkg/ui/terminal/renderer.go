// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/wowa/pkg/style"
	"github.com/arthur-debert/wowa/pkg/ui/display"
)

// Renderer provides rich terminal output using tables and styling
type Renderer struct {
	output    io.Writer
	changelog *style.ChangelogRenderer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w, changelog: style.NewChangelogRenderer()}, nil
}

// RenderResult renders a display result with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.AddonList:
		if len(v.Addons) == 0 {
			return r.lines(display.AddonLines(v))
		}
		return style.WriteAddonTable(r.output, v.Addons)
	case *display.InstallResult:
		return r.indicated(indicatorFor(v.Changed), display.InstallLines(v))
	case *display.RemoveResult:
		return r.indicated(style.SuccessIndicator, display.RemoveLines(v))
	case *display.UpdateResult:
		return r.renderUpdate(v)
	case *display.AuraList:
		if len(v.Auras) == 0 {
			return r.lines(display.AuraLines(v))
		}
		return style.WriteAuraTable(r.output, v.Auras)
	case *display.ConfigValue:
		return r.lines(display.ConfigLines(v))
	case *display.ConfigDump:
		_, err := io.WriteString(r.output, v.TOML)
		return err
	case *display.SelfUpdateResult:
		return r.indicated(indicatorFor(v.Updated), display.SelfUpdateLines(v))
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderUpdate(v *display.UpdateResult) error {
	if err := r.lines(display.UpdateLines(v)); err != nil {
		return err
	}
	if !v.ShowChangelog {
		return nil
	}
	for _, a := range v.Auras {
		if a.Changelog == nil || a.Changelog.Text == "" {
			continue
		}
		title := style.TitleStyle.Render(a.Name) + " " + style.VersionStyle.Render(a.WagoSemver)
		body := style.NoteStyle.Render(r.changelog.Render(a.Changelog.Text))
		if _, err := fmt.Fprintf(r.output, "\n%s\n%s\n", title, body); err != nil {
			return err
		}
	}
	return nil
}

func indicatorFor(changed bool) string {
	if changed {
		return style.SuccessIndicator
	}
	return style.InfoIndicator
}

func (r *Renderer) indicated(indicator string, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(r.output, "%s %s\n", indicator, style.Render(line)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) lines(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(r.output, style.Render(line)); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error with error styling
func (r *Renderer) RenderError(err error) error {
	_, writeErr := fmt.Fprintf(r.output, "%s %s\n", style.ErrorIndicator, style.ErrorStyle.Render(err.Error()))
	return writeErr
}

// RenderMessage renders a message with markup applied
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.Render(msg))
	return err
}
