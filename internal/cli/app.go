package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdxmph/parastrom/internal/config"
	"github.com/pdxmph/parastrom/internal/db"
	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/notify"
	"github.com/pdxmph/parastrom/internal/taskstore"
)

// app is what a command needs once configuration is resolved
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	database *db.DB
	store    *taskstore.Store
}

// openApp resolves configuration, opens the backend and loads the tasks
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	logger = logger.WithSession(uuid.NewString()).With("command", cmd.Name())

	a := &app{cfg: cfg, logger: logger}

	var kv taskstore.KV
	if viper.GetBool("ephemeral") {
		kv = db.NewMemory()
		logger.Debug("using in-memory store")
	} else {
		database, err := db.Open(cfg.Database.Path, db.WithLogger(logger))
		if err != nil {
			logger.Close()
			return nil, err
		}
		a.database = database
		kv = database
	}

	a.store = taskstore.New(kv,
		taskstore.WithKey(cfg.Database.Key),
		taskstore.WithLogger(logger),
	)
	tasks := a.store.Load()
	logger.Debug("tasks loaded", "count", len(tasks))
	return a, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	switch {
	case cfg.Logging.File != "":
		return logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	case viper.GetBool("verbose"):
		return logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level), nil
	default:
		return logging.NopLogger(), nil
	}
}

// notifier selects the configured sink. Disabled notifications use noop.
func (a *app) notifier(out io.Writer) (*notify.Manager, error) {
	backend := a.cfg.Notifications.Backend
	if !a.cfg.Notifications.Enabled {
		backend = "noop"
	}
	m, err := notify.NewManager(backend, notify.Options{
		Heading: a.cfg.Notifications.Title,
		Out:     out,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("notifications: %w (available: %v)", err, notify.ListSinks())
	}
	return m, nil
}

// Close releases the database and the log file
func (a *app) Close() error {
	var errs []error
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if err := a.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
