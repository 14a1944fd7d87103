package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how command results are written.
type Format int

const (
	FormatAuto     Format = iota // pick term or text from the output stream
	FormatTerminal               // styled tables and colors
	FormatText                   // plain lines, safe for pipes and logs
	FormatJSON
	FormatYAML
)

// FormatNames lists the accepted --format values, indexed by Format.
var FormatNames = []string{"auto", "term", "text", "json", "yaml"}

// formatAliases maps the extra spellings ParseFormat accepts.
var formatAliases = map[string]Format{
	"":         FormatAuto,
	"terminal": FormatTerminal,
	"plain":    FormatText,
	"yml":      FormatYAML,
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(FormatNames) {
		return "unknown"
	}
	return FormatNames[f]
}

// ParseFormat reads a --format value. Case and surrounding blanks are
// ignored.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, known := range FormatNames {
		if name == known {
			return Format(i), nil
		}
	}
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	return FormatAuto, fmt.Errorf("unknown format: %s (expected one of %s)", s, strings.Join(FormatNames, ", "))
}

// DetectFormat picks what auto resolves to for output. Anything but a
// color-capable terminal gets plain text, and so does NO_COLOR.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	fd := output.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// IsInteractive reports whether output is a terminal that can show spinners.
func IsInteractive(output *os.File) bool {
	return DetectFormat(output) == FormatTerminal
}
