package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdxmph/parastrom/internal/taskstore"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all tasks to a file",
	Long: `Write all tasks to a file as pretty-printed JSON, or YAML when the file
ends in .yaml or .yml. The default file is ui.export_path; "-" writes to
stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all tasks with the contents of a file",
	Long: `Replace the whole collection with the tasks in an exported file. "-"
reads from stdin. If the file cannot be parsed nothing changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().String("format", "", "json or yaml (default: from the file extension)")
	importCmd.Flags().String("format", "", "json or yaml (default: from the file extension)")

	rootCmd.AddCommand(exportCmd, importCmd)
}

// transferFormat honors --format and falls back to the file extension
func transferFormat(cmd *cobra.Command, path string) (taskstore.Format, error) {
	if raw, _ := cmd.Flags().GetString("format"); raw != "" {
		return taskstore.ParseFormat(raw)
	}
	return taskstore.FormatFromPath(path), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path := a.cfg.UI.ExportPath
	if len(args) == 1 {
		path = args[0]
	}
	format, err := transferFormat(cmd, path)
	if err != nil {
		return err
	}

	data, err := a.store.Export(format)
	if err != nil {
		return err
	}

	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(a.store.Tasks()), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	path := args[0]
	format, err := transferFormat(cmd, path)
	if err != nil {
		return err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	if err := a.store.Import(data, format); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks from %s\n", len(a.store.Tasks()), path)
	return nil
}
