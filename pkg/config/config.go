package config

import (
	"strings"

	"github.com/xplshn/scc/pkg/cli"
)

type Feature int

const (
	FeatCaret Feature = iota
	FeatColor
	FeatCompareJumps
	FeatCount
)

type Warning int

const (
	WarnNoEffect Warning = iota
	WarnShadow
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	Target

	wall func() (enabled, disabled bool)
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		Target:     presets[DefaultTarget("linux")].clone(),
	}

	features := map[Feature]Info{
		FeatCaret:        {"caret", false, "Print diagnostics as file:line:col with the offending source line."},
		FeatColor:        {"color", true, "Color diagnostics when writing to a terminal."},
		FeatCompareJumps: {"compare-jumps", true, "Branch directly on relational tests instead of materializing 0/1."},
	}

	warnings := map[Warning]Info{
		WarnNoEffect: {"no-effect", true, "Warn about expression statements that compute a value and discard it."},
		WarnShadow:   {"shadow", false, "Warn when a local declaration hides one from an enclosing scope."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyFlag applies one -W or -F flag, e.g. "-Wno-shadow" or "-Fcaret".
func (c *Config) ApplyFlag(flag string) {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	isWarning := true

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		isWarning = false
	default:
		name = trimmed
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
		}
	} else if f, ok := c.FeatureMap[name]; ok {
		c.SetFeature(f, enable)
	}
}

// SetupFlagGroups registers -W<name>/-Wno-<name> and -F<name>/-Fno-<name>
// for every warning and feature. The returned entries are indexed by
// Warning and Feature respectively.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	var warningFlags, featureFlags []cli.FlagGroupEntry

	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags = append(warningFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Enabled: new(bool), Disabled: new(bool),
		})
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags = append(featureFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Enabled: new(bool), Disabled: new(bool),
		})
	}

	var wallEnabled, wallDisabled bool
	fs.Bool(&wallEnabled, "Wall", "", false, "Enable all warnings")
	fs.Bool(&wallDisabled, "Wno-all", "", false, "Disable all warnings")
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available Features:", featureFlags)

	c.wall = func() (bool, bool) { return wallEnabled, wallDisabled }
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies the parsed flag group values into the configuration.
// -Wall and -Wno-all apply first so that individual flags override them.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	if c.wall != nil {
		if on, off := c.wall(); on {
			c.ApplyFlag("-Wall")
		} else if off {
			c.ApplyFlag("-Wno-all")
		}
	}
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
