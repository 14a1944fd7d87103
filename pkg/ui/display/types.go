// Package display holds the command results handed to the renderers. Every
// type is plain data with json and yaml tags so the structured renderers can
// encode it directly.
package display

import (
	"github.com/arthur-debert/wowa/pkg/addons"
	"github.com/arthur-debert/wowa/pkg/types"
)

// AddonList is the result of `wowa list`.
type AddonList struct {
	Addons []types.Addon `json:"addons" yaml:"addons"`
}

// InstallResult is the result of `wowa install`.
type InstallResult struct {
	Addon           types.Addon `json:"addon" yaml:"addon"`
	PreviousVersion string      `json:"previousVersion,omitempty" yaml:"previousVersion,omitempty"`
	Changed         bool        `json:"changed" yaml:"changed"`
}

// RemoveResult is the result of `wowa remove`.
type RemoveResult struct {
	Addon types.Addon `json:"addon" yaml:"addon"`
}

// Failure is an addon that could not be updated.
type Failure struct {
	ID     string       `json:"id" yaml:"id"`
	Flavor types.Flavor `json:"gameVersion" yaml:"gameVersion"`
	Error  string       `json:"error" yaml:"error"`
}

// UpdateResult is the result of `wowa update`.
type UpdateResult struct {
	Updated  []InstallResult    `json:"updated" yaml:"updated"`
	UpToDate []types.Addon      `json:"upToDate" yaml:"upToDate"`
	Failed   []Failure          `json:"failed" yaml:"failed"`
	Auras    []types.AuraUpdate `json:"auras" yaml:"auras"`

	// AurasSkipped is set when the aura sync did not run.
	AurasSkipped bool `json:"aurasSkipped" yaml:"aurasSkipped"`
	// ShowChangelog asks the human renderers to print aura changelogs.
	ShowChangelog bool `json:"-" yaml:"-"`
}

// AuraList is the result of `wowa auras`.
type AuraList struct {
	Flavor types.Flavor      `json:"gameVersion" yaml:"gameVersion"`
	Auras  []types.LocalAura `json:"auras" yaml:"auras"`
}

// NewInstallResult converts an install outcome.
func NewInstallResult(o *addons.Outcome) *InstallResult {
	return &InstallResult{Addon: o.Addon, PreviousVersion: o.PreviousVersion, Changed: o.Changed}
}

// NewUpdateResult converts an addon update report and the aura updates of
// the same run. report may be nil when the addon phase did not run.
func NewUpdateResult(report *addons.UpdateReport, auras []types.AuraUpdate) *UpdateResult {
	result := &UpdateResult{
		Updated:  []InstallResult{},
		UpToDate: []types.Addon{},
		Failed:   []Failure{},
		Auras:    append([]types.AuraUpdate{}, auras...),
	}
	if report == nil {
		return result
	}
	for _, o := range report.Outcomes {
		if o.Changed {
			result.Updated = append(result.Updated, *NewInstallResult(&o))
		} else {
			result.UpToDate = append(result.UpToDate, o.Addon)
		}
	}
	for _, f := range report.Failures {
		result.Failed = append(result.Failed, Failure{ID: f.Addon.ID, Flavor: f.Addon.Flavor, Error: f.Err.Error()})
	}
	return result
}

// ConfigValue is the result of `wowa config <key> [value]`.
type ConfigValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	Saved bool   `json:"saved" yaml:"saved"`
}

// ConfigDump is the result of `wowa config` with no arguments. TOML is the
// same values rendered for humans.
type ConfigDump struct {
	Values map[string]interface{} `json:"config" yaml:"config"`
	TOML   string                 `json:"-" yaml:"-"`
}

// SelfUpdateResult is the result of `wowa self-update`.
type SelfUpdateResult struct {
	CurrentVersion string `json:"currentVersion" yaml:"currentVersion"`
	LatestVersion  string `json:"latestVersion" yaml:"latestVersion"`
	Updated        bool   `json:"updated" yaml:"updated"`
	Path           string `json:"path,omitempty" yaml:"path,omitempty"`
}
