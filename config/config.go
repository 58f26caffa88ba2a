// Package config loads the optional py2scala TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the working directory when no config path is
// given.
const DefaultFile = ".py2scala.toml"

const (
	defaultTabWidth = 8
	defaultDebounce = 300 * time.Millisecond
)

// Config mirrors the conversion flags plus settings that only make sense in
// a file: which sources a directory walk picks up and how watch mode behaves.
type Config struct {
	Scala           bool    `toml:"scala"`
	RemoveSelf      bool    `toml:"remove_self"`
	ConvertBrackets bool    `toml:"convert_brackets"`
	SecondPass      bool    `toml:"second_pass"`
	TabWidth        int     `toml:"tab_width"`
	Sources         Sources `toml:"sources"`
	Watch           Watch   `toml:"watch"`
}

// Sources selects files when a directory is given on the command line.
// Patterns are matched against paths relative to that directory.
type Sources struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path. An empty path means DefaultFile, which may be
// missing; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config %s: unknown key %s", path, undecoded[0])
	}
	if cfg.TabWidth < 0 {
		return nil, fmt.Errorf("parsing config %s: tab_width must be positive, got %d", path, cfg.TabWidth)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TabWidth == 0 {
		c.TabWidth = defaultTabWidth
	}
	if len(c.Sources.Include) == 0 {
		c.Sources.Include = []string{"**.py"}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaultDebounce
	}
}
