package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure returned from Load.
var ErrInvalidConfig = errors.New("config: invalid")

// Environment variables that override file and default values.
const (
	EnvLogLevel  = "SHARED_LOG_LEVEL"
	EnvLogFormat = "SHARED_LOG_FORMAT"
	EnvCallers   = "SHARED_CALLERS"
	EnvOutput    = "SHARED_OUTPUT"
)

// Config drives the sharedinstance CLI.
type Config struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
	Callers   int    `yaml:"callers"`
	Output    string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Callers:   8,
		Output:    "yaml",
	}
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read layers defaults, the YAML file at path (skipped when path is empty) and
// SHARED_* environment variables without validating the result, so callers can
// apply a higher-precedence layer before calling Validate.
func Read(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg; keys absent from the document keep their value.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.LogLevel = getenv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getenv(EnvLogFormat, cfg.LogFormat)
	cfg.Output = getenv(EnvOutput, cfg.Output)

	if v := os.Getenv(EnvCallers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvCallers, v)
		}
		cfg.Callers = n
	}
	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Callers <= 0 {
		return fmt.Errorf("%w: callers must be > 0, got %d", ErrInvalidConfig, c.Callers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: logLevel: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logFormat must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Output {
	case "yaml", "text":
	default:
		return fmt.Errorf("%w: output must be yaml or text, got %q", ErrInvalidConfig, c.Output)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
