package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"chantier/adapters/excel"
	"chantier/domain/core"
	"chantier/internal"
	"chantier/internal/importer"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chantier-cli",
		Short:         "Import construction task spreadsheets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newImportCmd(),
		newTemplateCmd(),
	)
	return rootCmd
}

func newImportCmd() *cobra.Command {
	var projectID string
	var sheetName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Normalize an .xlsx, .xls or .csv task list and print the records",
		Long: `Read a task spreadsheet, map its columns onto task fields and print the
resulting records with an import summary. Nothing is stored.

Example: chantier-cli import planning.xlsx --project villa-lyon --sheet Planning`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], projectID, sheetName, asJSON)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "local", "Project identifier shown in the summary")
	cmd.Flags().StringVar(&sheetName, "sheet", os.Getenv("IMPORT_SHEET"), "Worksheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records and summary as JSON")

	return cmd
}

func runImport(cmd *cobra.Command, path, projectID, sheetName string, asJSON bool) error {
	project, err := core.ParseProjectID(projectID)
	if err != nil {
		return err
	}

	// Keep stdout clean for the records
	internal.DefaultLogger.SetLevel(internal.LogLevelError)

	opts := excel.DefaultReaderOptions()
	opts.Sheet = sheetName
	table, err := excel.NewDataReader(path, opts).ReadData(cmd.Context())
	if err != nil {
		return err
	}

	im := importer.New(excel.NewDecoder(opts), importer.Options{})
	result := im.ImportTable(table)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"project": project,
			"file":    filepath.Base(path),
			"tasks":   result.Tasks,
			"summary": result.Summary,
		})
	}
	return printResult(out, project, result)
}

func printResult(out io.Writer, project core.ProjectID, result *importer.Result) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE\tPROGRESS")
	for i, t := range result.Tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
			i+1, t.Title, t.Status, t.Priority, t.Assignee, t.DueDate, t.Progress)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := result.Summary
	fmt.Fprintf(out, "\n%d tasks read for project %s", summary.Rows, project)
	if summary.Sheet != "" {
		fmt.Fprintf(out, " from sheet %q", summary.Sheet)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Progress: mean %.1f%%, median %.1f%%\n", summary.ProgressMean, summary.ProgressMedian)

	if fields := summary.FallbackFields(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s=%d", f, summary.FallbackCount(f)))
		}
		fmt.Fprintf(out, "Defaults applied: %s\n", strings.Join(parts, ", "))
	}
	if len(summary.UnmappedHeaders) > 0 {
		fmt.Fprintf(out, "Ignored columns: %s\n", strings.Join(summary.UnmappedHeaders, ", "))
	}
	return nil
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template [out.xlsx]",
		Short: "Write an import template workbook with the expected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := excel.WriteTemplate(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", args[0])
			return nil
		},
	}
}
