package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !strings.HasSuffix(cfg.Database.Path, filepath.Join(".config", "parastrom", "parastrom.db")) {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Database.Key != "parastrom_tasks" {
		t.Errorf("Database.Key = %q, want parastrom_tasks", cfg.Database.Key)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.Title != "Task fertig" {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.UI.TickInterval.Duration != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.UI.TickInterval.Duration)
	}
	if cfg.UI.ExportPath != "parastrom-tasks.json" {
		t.Errorf("ExportPath = %q", cfg.UI.ExportPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFrom_OverridesAndExpands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
path = "~/tasks/p.db"

[notifications]
enabled = false
backend = "bell"

[logging]
level = "debug"
file = "~/logs/parastrom.log"

[ui]
tick_interval = "250ms"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "tasks", "p.db"); cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}
	if want := filepath.Join(home, "logs", "parastrom.log"); cfg.Logging.File != want {
		t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, want)
	}
	if cfg.Database.Key != "parastrom_tasks" {
		t.Errorf("unset key should keep default, got %q", cfg.Database.Key)
	}
	if cfg.Notifications.Enabled || cfg.Notifications.Backend != "bell" {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.Notifications.Title != "Task fertig" {
		t.Errorf("unset title should keep default, got %q", cfg.Notifications.Title)
	}
	if cfg.UI.TickInterval.Duration != 250*time.Millisecond {
		t.Errorf("TickInterval = %v", cfg.UI.TickInterval.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":   "[database\npath = 1",
		"duration": "[ui]\ntick_interval = \"soon\"",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			_ = os.WriteFile(path, []byte(content), 0644)
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom should fail")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.Database.Path = "" }},
		{"empty key", func(c *Config) { c.Database.Key = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero tick", func(c *Config) { c.UI.TickInterval = Duration{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Database.Path = "/tmp/p.db"
	cfg.Notifications.Backend = "log"
	cfg.UI.TickInterval = Duration{2 * time.Second}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `tick_interval = "2s"`) {
		t.Errorf("saved file should write durations as strings:\n%s", data)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", loaded, cfg)
	}
}
