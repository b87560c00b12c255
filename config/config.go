// Package config loads interpreter settings from YAML files.
//
// A configuration looks like this:
//
//	permitAmbiguousExternalFunctions: false
//	maxSteps: 0
//	maxCallDepth: 0
//	encoding: utf-8
//	log:
//	  level: info
//	  pretty: true
//	results:
//	  driver: sqlite
//	  dsn: results.db
//	modules:
//	  disable: [system]
//	  plugins: ./plugins
//
// Every field is optional.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/zephyrtronium/hslang"
)

// Config is an interpreter configuration.
type Config struct {
	PermitAmbiguousExternalFunctions bool   `yaml:"permitAmbiguousExternalFunctions"`
	MaxSteps                         uint64 `yaml:"maxSteps"`
	MaxCallDepth                     int    `yaml:"maxCallDepth"`
	// Encoding is the source encoding, as accepted by hslang.Decode.
	Encoding string  `yaml:"encoding"`
	Log      Log     `yaml:"log"`
	Results  Results `yaml:"results"`
	Modules  Modules `yaml:"modules"`
}

// Log configures logging.
type Log struct {
	// Level is a zerolog level name.
	Level string `yaml:"level"`
	// Pretty selects human-readable console output instead of JSON.
	Pretty bool `yaml:"pretty"`
}

// Results configures where test results are stored. An empty driver keeps
// results in memory only.
type Results struct {
	// Driver is one of sqlite, postgres, or mysql.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Modules configures the native module registry.
type Modules struct {
	// Disable lists modules to remove from the registry.
	Disable []string `yaml:"disable"`
	// Plugins is a directory from which to load plugin modules.
	Plugins string `yaml:"plugins"`
}

// ErrInvalid is wrapped by errors describing bad configuration values.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Encoding: "auto",
		Log:      Log{Level: "info", Pretty: true},
	}
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates a configuration. Fields absent from data take
// their values from Default. Unknown fields are an error.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration's values are usable.
func (c *Config) Validate() error {
	var errs []error
	if _, err := hslang.Decode(nil, c.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("%w: encoding: %w", ErrInvalid, err))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log level: %w", ErrInvalid, err))
	}
	switch c.Results.Driver {
	case "", "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown results driver %q", ErrInvalid, c.Results.Driver))
	}
	if c.Results.Driver != "" && c.Results.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: results driver %s needs a dsn", ErrInvalid, c.Results.Driver))
	}
	if c.MaxCallDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: negative maxCallDepth", ErrInvalid))
	}
	return errors.Join(errs...)
}

// ExecutionOptions returns the interpreter options the configuration
// describes.
func (c *Config) ExecutionOptions() hslang.ExecutionOptions {
	return hslang.ExecutionOptions{
		PermitAmbiguousExternalFunctions: c.PermitAmbiguousExternalFunctions,
		MaxSteps:                         c.MaxSteps,
		MaxCallDepth:                     c.MaxCallDepth,
	}
}

// Logger creates a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if c.Log.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Registry creates a copy of base with disabled modules removed and plugin
// modules added. Disabling a module that base doesn't have is an error, so
// that typos don't silently leave a module enabled.
func (c *Config) Registry(base *hslang.Registry) (*hslang.Registry, error) {
	r := base.Clone()
	var errs []error
	if c.Modules.Plugins != "" {
		if _, err := hslang.ScanPlugins(r, c.Modules.Plugins); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range c.Modules.Disable {
		if _, ok := r.Lookup(name); !ok {
			errs = append(errs, fmt.Errorf("%w: can't disable unknown module %q", ErrInvalid, name))
			continue
		}
		r.Remove(name)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}
