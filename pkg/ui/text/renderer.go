// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/wowa/pkg/style"
	"github.com/arthur-debert/wowa/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders a display result as plain lines
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.AddonList:
		return r.lines(display.AddonLines(v))
	case *display.InstallResult:
		return r.lines(display.InstallLines(v))
	case *display.RemoveResult:
		return r.lines(display.RemoveLines(v))
	case *display.UpdateResult:
		if err := r.lines(display.UpdateLines(v)); err != nil {
			return err
		}
		if v.ShowChangelog {
			return r.changelogs(v)
		}
		return nil
	case *display.AuraList:
		return r.lines(display.AuraLines(v))
	case *display.ConfigValue:
		return r.lines(display.ConfigLines(v))
	case *display.ConfigDump:
		_, err := io.WriteString(r.output, v.TOML)
		return err
	case *display.SelfUpdateResult:
		return r.lines(display.SelfUpdateLines(v))
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) changelogs(v *display.UpdateResult) error {
	for _, a := range v.Auras {
		if a.Changelog == nil || a.Changelog.Text == "" {
			continue
		}
		if _, err := fmt.Fprintf(r.output, "\n%s:\n%s\n", a.Name, a.Changelog.Text); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) lines(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(r.output, style.Strip(line)); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, writeErr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return writeErr
}

// RenderMessage renders a simple message as plain text
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, strings.TrimRight(style.Strip(msg), "\n"))
	return err
}
