package config

import (
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// SecretMask replaces secret values in dumps.
const SecretMask = "********"

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	for _, k := range secretKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Values returns the effective configuration as a nested map with secrets
// masked.
func (c *Config) Values() (map[string]interface{}, error) {
	kc := c.k.Copy()
	for _, key := range secretKeys {
		if kc.String(key) != "" {
			if err := kc.Set(key, SecretMask); err != nil {
				return nil, errors.Wrap(err, errors.ErrInternal, "failed to mask secret")
			}
		}
	}
	return kc.Raw(), nil
}

// Dump renders the effective configuration as TOML with secrets masked.
func (c *Config) Dump() (string, error) {
	values, err := c.Values()
	if err != nil {
		return "", err
	}

	out, err := toml.Marshal(values)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render config")
	}
	return string(out), nil
}

// GenerateConfigContent returns the defaults file with every value commented
// out, suitable as a starting config.toml.
func GenerateConfigContent() string {
	return commentOutConfigValues(GetDefaultsContent())
}

// commentOutConfigValues comments out assignment lines, leaving blank lines,
// comments and section headers untouched.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
