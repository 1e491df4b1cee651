package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/notify"
	"github.com/pdxmph/parastrom/internal/taskstore"
)

// Config holds the application configuration
type Config struct {
	Database      DatabaseConfig      `toml:"database"`
	Notifications NotificationsConfig `toml:"notifications"`
	Logging       LoggingConfig       `toml:"logging"`
	UI            UIConfig            `toml:"ui"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
	Key  string `toml:"key"`
}

// NotificationsConfig selects how completed tasks are announced
type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend"`
	Title   string `toml:"title"`
}

// LoggingConfig controls the structured log
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// UIConfig holds interactive settings
type UIConfig struct {
	TickInterval Duration `toml:"tick_interval"`
	ExportPath   string   `toml:"export_path"`
}

// Duration is a time.Duration written as "1s", "500ms" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Dir returns ~/.config/parastrom
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "parastrom"), nil
}

// Path returns the standard config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "parastrom", "parastrom.db"),
			Key:  taskstore.DefaultKey,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Title:   notify.DefaultHeading,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		UI: UIConfig{
			TickInterval: Duration{time.Second},
			ExportPath:   taskstore.DefaultExportFile,
		},
	}
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.expandPaths()
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.Database.Path = expandPath(c.Database.Path)
	c.Logging.File = expandPath(c.Logging.File)
	c.UI.ExportPath = expandPath(c.UI.ExportPath)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Key == "" {
		return fmt.Errorf("database.key must not be empty")
	}
	if !logging.IsValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Logging.Level)
	}
	if c.UI.TickInterval.Duration <= 0 {
		return fmt.Errorf("ui.tick_interval must be positive, got %s", c.UI.TickInterval.Duration)
	}
	return nil
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
