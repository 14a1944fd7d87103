package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flavor is the game variant an item is installed for.
type Flavor int

const (
	// Retail is the current live game.
	Retail Flavor = iota
	// Classic is the classic era game.
	Classic
)

// AllFlavors lists every supported flavor in display order.
var AllFlavors = []Flavor{Retail, Classic}

// String returns the lowercase name used in manifest keys and output.
func (f Flavor) String() string {
	switch f {
	case Retail:
		return "retail"
	case Classic:
		return "classic"
	default:
		return fmt.Sprintf("flavor(%d)", int(f))
	}
}

// ParseFlavor parses a flavor name as written by String.
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retail", "":
		return Retail, nil
	case "classic":
		return Classic, nil
	default:
		return Retail, fmt.Errorf("unknown game flavor: %q", s)
	}
}

// MarshalJSON encodes the flavor as its lowercase name.
func (f Flavor) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a lowercase flavor name.
func (f *Flavor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flavor must be a string: %w", err)
	}
	parsed, err := ParseFlavor(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalYAML encodes the flavor as its lowercase name.
func (f Flavor) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}
