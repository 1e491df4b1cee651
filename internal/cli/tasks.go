package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pdxmph/parastrom/internal/progress"
	"github.com/pdxmph/parastrom/internal/task"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a task that starts now.

Durations accept a bare number of minutes ("25"), a number with a unit
("2 hours", "3d") or a Go duration ("1h30m").`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks with their progress",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a task done, or reopen a done task",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	addCmd.Flags().StringP("category", "c", "", "task category")
	addCmd.Flags().StringP("priority", "p", "low", "priority: low, medium or high")
	addCmd.Flags().StringP("duration", "d", "1m", "how long the task runs")
	addCmd.Flags().StringP("notes", "n", "", "free-form notes")

	listCmd.Flags().Bool("json", false, "print the collection as JSON")

	rootCmd.AddCommand(addCmd, listCmd, toggleCmd, deleteCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	category, _ := cmd.Flags().GetString("category")
	rawPriority, _ := cmd.Flags().GetString("priority")
	rawDuration, _ := cmd.Flags().GetString("duration")
	notes, _ := cmd.Flags().GetString("notes")

	priority, err := task.ParsePriority(rawPriority)
	if err != nil {
		return err
	}
	duration, err := task.ParseDuration(rawDuration)
	if err != nil {
		return err
	}

	now := time.Now()
	draft := task.New(strings.Join(args, " "), category, priority, duration, notes, now)
	created, err := a.store.Create(draft)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", created.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Title: %s\n", created.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "Due: %s\n", now.Add(duration).Format("2006-01-02 15:04:05"))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := a.store.ExportJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printTasks(cmd.OutOrStdout(), a.store.Tasks(), time.Now())
	return nil
}

var listPriorityColors = map[task.Priority]lipgloss.Color{
	task.PriorityLow:    lipgloss.Color("42"),
	task.PriorityMedium: lipgloss.Color("220"),
	task.PriorityHigh:   lipgloss.Color("196"),
}

// printTasks writes one line per task. Progress is computed without the
// completion signal, so listing never triggers a notification.
func printTasks(w io.Writer, tasks []task.Task, now time.Time) {
	active, done := 0, 0
	for _, t := range tasks {
		if t.Done {
			done++
		} else {
			active++
		}
	}
	fmt.Fprintf(w, "%d active | %d done\n", active, done)

	for _, t := range tasks {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}

		fraction, err := progress.Fraction(t, now)
		gauge := fmt.Sprintf("%s %3.0f%%", gaugeBar(fraction, 20), fraction*100)
		if err != nil {
			gauge = "unreadable start time"
		}

		priority := lipgloss.NewStyle().
			Foreground(listPriorityColors[t.Priority]).
			Render(fmt.Sprintf("%-6s", t.Priority))

		line := fmt.Sprintf("%s %s  %s  %-28s %s", mark, t.ID, priority, t.Title, gauge)
		if t.Category != "" {
			line += "  #" + t.Category
		}
		fmt.Fprintln(w, line)
	}
}

func gaugeBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func runToggle(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	found, err := a.store.Toggle(id)
	if err != nil {
		return fmt.Errorf("failed to toggle task: %w", err)
	}
	if !found {
		return fmt.Errorf("no task with id %s", id)
	}

	t, _ := a.store.Get(id)
	if t.Done {
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s done\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	found, err := a.store.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !found {
		return fmt.Errorf("no task with id %s", id)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}
