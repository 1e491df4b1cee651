package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdxmph/parastrom/internal/config"
	"github.com/pdxmph/parastrom/internal/db"
	"github.com/pdxmph/parastrom/internal/notify"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create the configuration",
	Long: `View or create the parastrom configuration.

Without arguments, displays the effective configuration after environment
variables (PARASTROM_DATABASE_PATH, PARASTROM_LOGGING_LEVEL,
PARASTROM_NOTIFICATIONS_BACKEND, ...) and flags are applied.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/parastrom/config.toml (or --config).`,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := toml.NewEncoder(out).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprintf(out, "\n# notification sinks: %v\n", notify.ListSinks())
	return describeStorage(out, cfg)
}

// describeStorage appends what the database holds, when there is one
func describeStorage(out io.Writer, cfg *config.Config) error {
	if viper.GetBool("ephemeral") {
		fmt.Fprintln(out, "# storage: in memory")
		return nil
	}
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		fmt.Fprintln(out, "# storage: not initialized")
		return nil
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	keys, err := database.Keys()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# stored keys: %v\n", keys)

	entry, err := database.Entry(cfg.Database.Key)
	if err != nil {
		return err
	}
	if entry != nil && entry.UpdatedAt.Valid {
		fmt.Fprintf(out, "# tasks last written: %s\n", entry.UpdatedAt.Time.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := viper.GetString("config")
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}
