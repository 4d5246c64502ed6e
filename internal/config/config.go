package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "critpath.toml"

	DefaultTolerance   = 1e-9
	DefaultMaxPaths    = 1000
	DefaultFormat      = "table"
	DefaultPrecision   = 2
	DefaultHost        = "localhost"
	DefaultPort        = 7433
	DefaultMaxParallel = 4
)

// Formats lists the accepted output formats.
var Formats = []string{"table", "json", "path", "ascii", "dot"}

// Config is the resolved configuration.
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Output OutputConfig `toml:"output"`
	Server ServerConfig `toml:"server"`
	Batch  BatchConfig  `toml:"batch"`
}

type SolverConfig struct {
	Tolerance float64 `toml:"tolerance"`
	MaxPaths  int     `toml:"max_paths"`
}

type OutputConfig struct {
	Format    string `toml:"format"`
	Color     bool   `toml:"color"`
	Precision int    `toml:"precision"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type BatchConfig struct {
	MaxParallel int `toml:"max_parallel"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Tolerance: DefaultTolerance,
			MaxPaths:  DefaultMaxPaths,
		},
		Output: OutputConfig{
			Format:    DefaultFormat,
			Color:     true,
			Precision: DefaultPrecision,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Batch: BatchConfig{
			MaxParallel: DefaultMaxParallel,
		},
	}
}

// Load reads the TOML file at path on top of the defaults.
// An explicitly named file must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parse(data)
}

// LoadFromDir loads critpath.toml from dir.
// Returns the defaults (not an error) if the file doesn't exist.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, FileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(configPath)
}

func parse(data []byte) (*Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Solver.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("solver.tolerance must not be negative, got %g", c.Solver.Tolerance))
	}
	if c.Solver.MaxPaths < 1 {
		errs = append(errs, fmt.Errorf("solver.max_paths must be at least 1, got %d", c.Solver.MaxPaths))
	}
	if !isFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %v", c.Output.Format, Formats))
	}
	if c.Output.Precision < 0 || c.Output.Precision > 12 {
		errs = append(errs, fmt.Errorf("output.precision must be between 0 and 12, got %d", c.Output.Precision))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port))
	}
	if c.Batch.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("batch.max_parallel must be at least 1, got %d", c.Batch.MaxParallel))
	}

	return errors.Join(errs...)
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}

	return false
}
