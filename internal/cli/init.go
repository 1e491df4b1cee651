package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdxmph/parastrom/internal/db"
	"github.com/pdxmph/parastrom/internal/taskstore"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the task database",
	Long: `Create the sqlite database at database.path (or --db). An existing
database is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("fixtures", false, "seed the new database with sample tasks")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if viper.GetBool("ephemeral") {
		return errors.New("init creates a database file and cannot be combined with --ephemeral")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := db.Initialize(cfg.Database.Path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created database at %s\n", cfg.Database.Path)

	if seed, _ := cmd.Flags().GetBool("fixtures"); !seed {
		return nil
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	store := taskstore.New(database, taskstore.WithKey(cfg.Database.Key))
	if err := taskstore.SeedFixtures(store, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample tasks\n", len(store.Tasks()))
	return nil
}
