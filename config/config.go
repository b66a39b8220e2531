// Package config loads mediator runtime settings from YAML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Event publication phases relative to the unit-of-work commit.
const (
	PhaseAfterCommit  = "after_commit"
	PhaseBeforeCommit = "before_commit"
)

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel    string
	LogFormat   string
	LogPayloads bool

	EventsPhase string

	DBDriver string
	DBDSN    string

	RateLimitRPS   float64
	RateLimitBurst int

	MetricsNamespace string
}

// File mirrors the YAML layout. Unset fields keep their defaults.
type File struct {
	Log       LogFile       `yaml:"log"`
	Events    EventsFile    `yaml:"events"`
	Database  DatabaseFile  `yaml:"database"`
	RateLimit RateLimitFile `yaml:"rateLimit"`
	Metrics   MetricsFile   `yaml:"metrics"`
}

type LogFile struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Payloads *bool  `yaml:"payloads"`
}

type EventsFile struct {
	Phase string `yaml:"phase"`
}

type DatabaseFile struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RateLimitFile struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MetricsFile struct {
	Namespace string `yaml:"namespace"`
}

func Default() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "text",
		EventsPhase:      PhaseAfterCommit,
		DBDriver:         "sqlite",
		DBDSN:            "file::memory:?cache=shared",
		MetricsNamespace: "mediator",
	}
}

// Load reads configPath, or the first readable default location when configPath is empty,
// merges it over the defaults and applies environment overrides. A missing default file is not
// an error; a missing explicit file or malformed YAML is.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := []string{"configs/mediator.yaml", "mediator.yaml"}
	if configPath != "" {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if configPath == "" && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}

		parsed, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}

		Merge(&cfg, parsed)

		break
	}

	ApplyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys.
func Parse(data []byte) (File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}

	return f, nil
}

func Merge(dst *Config, src File) {
	if src.Log.Level != "" {
		dst.LogLevel = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.LogFormat = src.Log.Format
	}
	if src.Log.Payloads != nil {
		dst.LogPayloads = *src.Log.Payloads
	}
	if src.Events.Phase != "" {
		dst.EventsPhase = src.Events.Phase
	}
	if src.Database.Driver != "" {
		dst.DBDriver = src.Database.Driver
	}
	if src.Database.DSN != "" {
		dst.DBDSN = src.Database.DSN
	}
	if src.RateLimit.RPS != 0 {
		dst.RateLimitRPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst != 0 {
		dst.RateLimitBurst = src.RateLimit.Burst
	}
	if src.Metrics.Namespace != "" {
		dst.MetricsNamespace = src.Metrics.Namespace
	}
}

// ApplyEnvOverrides lets MEDIATOR_* variables win over file values. Unparsable booleans are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := env("MEDIATOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("MEDIATOR_EVENTS_PHASE"); v != "" {
		cfg.EventsPhase = v
	}
	if v := env("MEDIATOR_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := env("MEDIATOR_DB_DSN"); v != "" {
		cfg.DBDSN = v
	}

	raw := env("MEDIATOR_LOG_PAYLOADS")
	if raw == "" {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return
	}
	cfg.LogPayloads = v
}

// Validate reports settings that cannot be applied.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.LogFormat))
	}

	switch c.EventsPhase {
	case PhaseAfterCommit, PhaseBeforeCommit:
	default:
		errs = append(errs, fmt.Errorf("config: unknown events phase %q", c.EventsPhase))
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("config: unknown database driver %q", c.DBDriver))
	}

	return errors.Join(errs...)
}

// Level parses LogLevel as a slog level name.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}

	return l, nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }
