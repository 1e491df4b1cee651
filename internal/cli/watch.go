package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pdxmph/parastrom/internal/notify"
	"github.com/pdxmph/parastrom/internal/progress"
	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in the background and notify when tasks run out",
	Long: `Poll the stored tasks every ui.tick_interval and send one notification
per task when its duration has elapsed. The collection is re-read on every
tick, so tasks added from another terminal are picked up.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	watchCmd.Flags().Bool("once", false, "check every task once and exit")

	rootCmd.AddCommand(watchCmd, tuiCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	manager, err := a.notifier(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	poller := progress.NewPoller(progress.NewEngine(), manager, a.logger)

	if once, _ := cmd.Flags().GetBool("once"); once {
		poller.Sync(a.store.Tasks())
		for _, u := range poller.Tick(time.Now()) {
			if u.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", u.ID, u.Err)
			}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("watching tasks", "sink", manager.Name(), "interval", a.cfg.UI.TickInterval.String())
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d tasks (notifications via %s). Ctrl+C to stop.\n",
		len(a.store.Tasks()), manager.Name())

	source := func() []task.Task { return a.store.Load() }
	err = poller.Run(ctx, a.cfg.UI.TickInterval.Duration, source, time.Now)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// The status line carries the notice; terminal output would draw over
	// the alternate screen.
	manager, err := a.notifier(io.Discard)
	if err != nil {
		return err
	}

	// Desktop tools run as subprocesses; keep them off the event loop.
	sink := notify.NewAsyncSink(manager, a.logger)
	defer sink.Wait()

	poller := progress.NewPoller(progress.NewEngine(), sink, a.logger)
	model := tui.New(a.store, poller, tui.Options{
		Logger:       a.logger,
		TickInterval: a.cfg.UI.TickInterval.Duration,
		ExportPath:   a.cfg.UI.ExportPath,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
