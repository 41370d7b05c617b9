package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tablecheck/internal/domain"
	"tablecheck/internal/engine"
	"tablecheck/internal/quality"
)

func newScanCmd() *cobra.Command {
	var rulesetPath string
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Run the quality checks against a local CSV or Excel file",
		Long: "Loads the file, runs the full check battery, prints the findings, " +
			"and writes them to <file>_anomalies.json next to the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := scanFile(cmd.Context(), args[0], rulesetPath)
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), report)

			if !noWrite {
				outPath := anomaliesPath(args[0])
				if err := writeAnomalies(outPath, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nFindings written to %s\n", outPath)
			}

			if report.ErrorCount > 0 {
				return fmt.Errorf("%d error-level finding(s)", report.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesetPath, "ruleset", "", "YAML ruleset file (built-in retail defaults when empty)")
	cmd.Flags().BoolVar(&noWrite, "no-write", false, "skip writing the anomalies JSON file")
	return cmd
}

// scanFile loads one local file through an in-memory DuckDB instance and
// runs the full battery against it.
func scanFile(ctx context.Context, path, rulesetPath string) (*domain.Report, error) {
	fileType, err := domain.FileTypeForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	ruleset := quality.DefaultRuleset()
	if rulesetPath != "" {
		ruleset, err = quality.LoadRuleset(rulesetPath)
		if err != nil {
			return nil, err
		}
	}

	duck, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close() //nolint:errcheck

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loader := engine.NewLoader(duck, logger)

	delimiter := ""
	if fileType == domain.FileTypeCSV {
		data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
		if err != nil {
			return nil, err
		}
		delimiter = engine.SniffDelimiter(data)
	} else {
		loader.EnsureExcelSupport(ctx)
	}

	table, err := loader.Load(ctx, path, fileType, delimiter)
	if err != nil {
		return nil, err
	}

	findings, err := quality.Run(ctx, table, ruleset)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Summary:   quality.Summarize(table, findings),
		Findings:  findings,
		CreatedAt: time.Now().UTC(),
	}
	report.Tally()
	return report, nil
}

func renderReport(w io.Writer, report *domain.Report) {
	fmt.Fprintln(w, report.Summary)
	if len(report.Findings) == 0 {
		return
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("Check", "Severity", "Rows", "Message")
	for _, f := range report.Findings {
		table.Append([]string{
			f.Check,
			strings.ToUpper(string(f.Severity)),
			fmt.Sprintf("%d", f.RowCount),
			f.Message,
		})
	}
	table.Render()
}

// anomaliesPath derives the JSON output path: sales.csv -> sales_anomalies.json.
func anomaliesPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_anomalies.json"
}

func writeAnomalies(path string, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report output
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
