// Package config loads the optional ~/.lava.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lava-lang/internal/runtime"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "LAVA_CONFIG"

const (
	defaultFileName    = ".lava.yaml"
	defaultHistoryName = ".lava_history"
)

// Config holds CLI and REPL settings. Zero-valued fields in a file keep
// their defaults.
type Config struct {
	Prompt             string   `yaml:"prompt"`
	ContinuationPrompt string   `yaml:"continuation_prompt"`
	HistoryFile        string   `yaml:"history_file"`
	Color              bool     `yaml:"color"`
	Trace              bool     `yaml:"trace"`
	CallScope          string   `yaml:"call_scope"`
	ShowTokens         bool     `yaml:"show_tokens"`
	ShowAST            bool     `yaml:"show_ast"`
	Inputs             []string `yaml:"inputs,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{
		Prompt:             "-> ",
		ContinuationPrompt: "... ",
		Color:              true,
		CallScope:          runtime.CallScopeGlobal.String(),
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, defaultHistoryName)
	}
	return cfg
}

// Resolve picks the config file from, in order, the explicit path, the
// LAVA_CONFIG variable and ~/.lava.yaml. Only an explicitly named file has
// to exist; otherwise defaults are returned.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := strings.TrimSpace(os.Getenv(EnvVar)); env != "" {
		return Load(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, defaultFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Decode parses YAML from r on top of the defaults. Unknown keys are errors.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func (c *Config) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return encoder.Close()
}

// Scope returns the configured call scope.
func (c *Config) Scope() runtime.CallScope {
	scope, _ := runtime.ParseCallScope(c.CallScope)
	return scope
}

func (c *Config) normalize() error {
	if _, err := runtime.ParseCallScope(c.CallScope); err != nil {
		return err
	}
	if strings.HasPrefix(c.HistoryFile, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.HistoryFile = filepath.Join(home, c.HistoryFile[2:])
		}
	}
	return nil
}
