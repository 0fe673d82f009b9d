package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// RegisterName names one general-purpose register at full width and by its
// low byte.
type RegisterName struct {
	Long string `yaml:"long"`
	Byte string `yaml:"byte"`
}

// Target describes the 32-bit machine the generator emits code for.
type Target struct {
	Name           string         `yaml:"name"`
	WordSize       int            `yaml:"word_size"`
	StackAlignment int            `yaml:"stack_alignment"`
	GlobalPrefix   string         `yaml:"global_prefix"`
	Registers      []RegisterName `yaml:"registers"`
}

var scratch = []RegisterName{{"%eax", "%al"}, {"%ecx", "%cl"}, {"%edx", "%dl"}}

var presets = map[string]Target{
	"i386-linux":  {Name: "i386-linux", WordSize: 4, StackAlignment: 4, Registers: scratch},
	"i386-darwin": {Name: "i386-darwin", WordSize: 4, StackAlignment: 16, GlobalPrefix: "_", Registers: scratch},
}

// DefaultTarget picks the preset matching the host operating system.
func DefaultTarget(goos string) string {
	if goos == "darwin" {
		return "i386-darwin"
	}
	return "i386-linux"
}

// TargetNames lists the built-in presets.
func TargetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Target) clone() Target {
	t.Registers = append([]RegisterName(nil), t.Registers...)
	return t
}

// SetTarget selects a preset by name, or the host default if name is empty.
func (c *Config) SetTarget(goos, name string) error {
	if name == "" {
		name = DefaultTarget(goos)
	}
	t, ok := presets[name]
	if !ok {
		return fmt.Errorf("unsupported target '%s', supported: %v", name, TargetNames())
	}
	c.Target = t.clone()
	return nil
}

// LoadTargetFile overlays a YAML target description on the current target.
// Fields missing from the file keep their current value.
func (c *Config) LoadTargetFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read target file '%s'", path)
	}
	t := c.Target.clone()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return errors.Wrapf(err, "could not parse target file '%s'", path)
	}
	if err := t.Validate(); err != nil {
		return errors.Wrapf(err, "invalid target file '%s'", path)
	}
	c.Target = t
	return nil
}

// Validate checks that the generator can emit code for the target. Division
// and calls rely on %eax, %ecx and %edx, and no callee-saved register is
// preserved by the prologue, so the bank must be exactly those three.
func (t Target) Validate() error {
	if t.WordSize != 4 {
		return errors.Errorf("word size must be 4, got %d", t.WordSize)
	}
	if t.StackAlignment < t.WordSize || t.StackAlignment%t.WordSize != 0 {
		return errors.Errorf("stack alignment %d is not a multiple of the word size", t.StackAlignment)
	}
	if len(t.Registers) != len(scratch) {
		return errors.Errorf("expected %d registers, got %d", len(scratch), len(t.Registers))
	}
	for _, want := range scratch {
		found := false
		for _, r := range t.Registers {
			if r == want {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("register %s (%s) is missing", want.Long, want.Byte)
		}
	}
	return nil
}
