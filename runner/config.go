package runner

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timewinder-dev/ippinterp/vm"
	"gopkg.in/yaml.v3"
)

// Config describes one interpreter run. It can be read from a TOML or YAML
// file and overridden by command-line flags.
type Config struct {
	Source    string `toml:"source,omitempty" yaml:"source,omitempty"`
	Input     string `toml:"input,omitempty" yaml:"input,omitempty"`
	MaxSteps  int    `toml:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	DumpState string `toml:"dump_state,omitempty" yaml:"dump_state,omitempty"`
	LogLevel  string `toml:"log_level,omitempty" yaml:"log_level,omitempty"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func parseConfig(r io.Reader, yamlFormat bool) (*Config, error) {
	var out Config
	if yamlFormat {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return &out, nil
	}
	md, err := toml.NewDecoder(r).Decode(&out)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, vm.Errorf(vm.KindParameter, "unknown config key %q", undec[0].String())
	}
	return &out, nil
}

// LoadConfig reads a config file. Relative paths inside it are resolved
// against the file's directory.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vm.Errorf(vm.KindInputFile, "config: %v", err)
	}
	defer f.Close()
	c, err := parseConfig(f, isYAML(path))
	if err != nil {
		var vmErr *vm.Error
		if errors.As(err, &vmErr) {
			return nil, err
		}
		return nil, vm.Errorf(vm.KindParameter, "config %s: %v", path, err)
	}
	dir := filepath.Dir(path)
	c.Source = resolve(dir, c.Source)
	c.Input = resolve(dir, c.Input)
	c.DumpState = resolve(dir, c.DumpState)
	return c, nil
}

func isStdin(p string) bool {
	return p == "" || p == "-"
}

func resolve(dir, p string) string {
	if isStdin(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// Merge overlays the non-zero fields of o onto c.
func (c *Config) Merge(o Config) {
	if o.Source != "" {
		c.Source = o.Source
	}
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.MaxSteps != 0 {
		c.MaxSteps = o.MaxSteps
	}
	if o.DumpState != "" {
		c.DumpState = o.DumpState
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Validate checks that at least one of source and input is set; the other
// is read from standard input.
func (c *Config) Validate() error {
	if c.Source == "" && c.Input == "" {
		return vm.Errorf(vm.KindParameter, "at least one of --source and --input is required")
	}
	if isStdin(c.Source) && isStdin(c.Input) {
		return vm.Errorf(vm.KindParameter, "source and input cannot both be standard input")
	}
	if c.MaxSteps < 0 {
		return vm.Errorf(vm.KindParameter, "max steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}
