// Package daemon manages the focus runtime lifecycle and configuration.
package daemon

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the config file name inside the focus home.
const ConfigFile = "config.toml"

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Timer     TimerConfig     `toml:"timer"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where the database lives.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// TimerConfig controls the tick loop.
type TimerConfig struct {
	TickInterval string `toml:"tick_interval"`
}

// TelemetryConfig controls metrics export.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"` // info, debug or off
	File  string `toml:"file"`  // empty = stderr
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        11435,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: focusHome(),
		},
		Timer: TimerConfig{
			TickInterval: "1s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads config from ~/.focus/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(filepath.Join(focusHome(), ConfigFile))
}

// LoadConfigFrom reads config from path. Keys absent from the file keep
// their defaults.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = focusHome()
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.focus/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(filepath.Join(focusHome(), ConfigFile), cfg)
}

// SaveConfigTo writes cfg to path, creating parent directories.
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// TickInterval parses the configured tick interval, falling back to one
// second when it is missing or invalid.
func (c Config) TickInterval() time.Duration {
	return parseDuration(c.Timer.TickInterval, time.Second)
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// ConfigureLogging applies the logging section to the standard logger.
// The returned closer releases the log file, if any.
func ConfigureLogging(cfg LoggingConfig) (io.Closer, error) {
	switch strings.ToLower(cfg.Level) {
	case "off", "none":
		log.SetOutput(io.Discard)
		return nopCloser{}, nil
	case "debug":
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	default:
		log.SetFlags(log.LstdFlags)
	}

	if cfg.File == "" {
		return nopCloser{}, nil
	}
	path := expandHome(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// focusHome returns the focus data directory.
func focusHome() string {
	if env := os.Getenv("FOCUS_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".focus")
}

// FocusHome is exported for use by other packages.
func FocusHome() string {
	return focusHome()
}
