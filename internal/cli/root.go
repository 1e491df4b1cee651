// Package cli implements the parastrom command line. Commands share one
// configuration pipeline: the TOML file, then PARASTROM_* environment
// variables, then flags.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pdxmph/parastrom/internal/config"

	// Registers the notify-send and osascript sinks
	_ "github.com/pdxmph/parastrom/internal/notify/desktop"
)

var rootCmd = &cobra.Command{
	Use:   "parastrom",
	Short: "Self-timing task tracker",
	Long: `Paraström tracks tasks that each carry a duration. Every task shows how
much of its time has elapsed and raises a notification once when it runs out.

Without a subcommand the terminal UI starts when stdout is a terminal;
otherwise the task list is printed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runTUI(cmd, args)
		}
		return runList(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.config/parastrom/config.toml)")
	flags.String("db", "", "database file (overrides database.path)")
	flags.String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	flags.BoolP("verbose", "v", false, "log to stderr when no log file is configured")
	flags.Bool("ephemeral", false, "keep tasks in memory only; nothing is written to disk")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("database.path", flags.Lookup("db"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("ephemeral", flags.Lookup("ephemeral"))
}

func initConfig() {
	viper.SetEnvPrefix("PARASTROM")
	// PARASTROM_DATABASE_PATH for database.path
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file and layers environment and flag
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if viper.IsSet("database.path") {
		cfg.Database.Path = viper.GetString("database.path")
	}
	if viper.IsSet("database.key") {
		cfg.Database.Key = viper.GetString("database.key")
	}
	if viper.IsSet("logging.level") {
		cfg.Logging.Level = viper.GetString("logging.level")
	}
	if viper.IsSet("logging.file") {
		cfg.Logging.File = viper.GetString("logging.file")
	}
	if viper.IsSet("notifications.enabled") {
		cfg.Notifications.Enabled = viper.GetBool("notifications.enabled")
	}
	if viper.IsSet("notifications.backend") {
		cfg.Notifications.Backend = viper.GetString("notifications.backend")
	}
	if viper.IsSet("notifications.title") {
		cfg.Notifications.Title = viper.GetString("notifications.title")
	}
	if viper.IsSet("ui.tick_interval") {
		cfg.UI.TickInterval.Duration = viper.GetDuration("ui.tick_interval")
	}
	if viper.IsSet("ui.export_path") {
		cfg.UI.ExportPath = viper.GetString("ui.export_path")
	}
}
