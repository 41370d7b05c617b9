package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/domain"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScanFile(t *testing.T) {
	path := writeTempCSV(t, "Product,Barcode,Qty Sold\nAspirin,111,2\nAspirin,111,2\nIbuprofen,222,-1\n")

	report, err := scanFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Greater(t, report.ErrorCount, 0)
	assert.NotEmpty(t, report.Summary)

	codes := map[string]bool{}
	for _, f := range report.Findings {
		codes[f.Check] = true
	}
	assert.True(t, codes["DUPLICATE_ROWS"])
	assert.True(t, codes["VALUE_RANGE"])
}

func TestScanFileUnsupportedExtension(t *testing.T) {
	_, err := scanFile(context.Background(), "data.parquet", "")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestScanFileCustomRuleset(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,2\n3,4\n")
	rulesetPath := filepath.Join(t.TempDir(), "ruleset.yaml")
	require.NoError(t, os.WriteFile(rulesetPath, []byte("expected_columns: [a, b, c]\n"), 0o600))

	report, err := scanFile(context.Background(), path, rulesetPath)
	require.NoError(t, err)

	// Column c is expected but absent.
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, "COLUMN_STRUCTURE", report.Findings[0].Check)
}

func TestAnomaliesPath(t *testing.T) {
	assert.Equal(t, "sales_anomalies.json", anomaliesPath("sales.csv"))
	assert.Equal(t, "/data/export_anomalies.json", anomaliesPath("/data/export.xlsx"))
	assert.Equal(t, "noext_anomalies.json", anomaliesPath("noext"))
}

func TestScanCommandWritesAnomalies(t *testing.T) {
	path := writeTempCSV(t, "Product,Barcode,Qty Sold\nAspirin,111,-1\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"scan", path})

	// The negative quantity is an error-level finding, so scan exits non-zero.
	err := cmd.Execute()
	require.Error(t, err)

	data, err := os.ReadFile(anomaliesPath(path))
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Greater(t, report.ErrorCount, 0)
	assert.NotEmpty(t, report.Findings)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "tablecheck")
}
