package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChangelogFormat is the markup a changelog text is written in.
type ChangelogFormat string

const (
	ChangelogBBCode   ChangelogFormat = "bbcode"
	ChangelogMarkdown ChangelogFormat = "markdown"
)

// UnmarshalJSON accepts format names in any case. Unknown formats are kept
// lowercased and treated as plain text by the sanitizer.
func (f *ChangelogFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("changelog format must be a string: %w", err)
	}
	*f = ChangelogFormat(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// Changelog is an optional free-text note attached to a remote aura version.
type Changelog struct {
	Text   string          `json:"text,omitempty" yaml:"text,omitempty"`
	Format ChangelogFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// LocalAura is an aura discovered in the game's save-state file.
type LocalAura struct {
	Name    string `json:"name" yaml:"name"`
	Slug    string `json:"slug" yaml:"slug"`
	Version int    `json:"version" yaml:"version"`
}

// AuraUpdate is a pending aura update embedded into the companion data file.
type AuraUpdate struct {
	Slug        string     `json:"slug" yaml:"slug"`
	Name        string     `json:"name" yaml:"name"`
	Author      string     `json:"author" yaml:"author"`
	Encoded     string     `json:"-" yaml:"-"`
	WagoVersion int        `json:"wagoVersion" yaml:"wagoVersion"`
	WagoSemver  string     `json:"wagoSemver" yaml:"wagoSemver"`
	Source      string     `json:"source" yaml:"source"`
	Changelog   *Changelog `json:"changelog,omitempty" yaml:"changelog,omitempty"`
}
