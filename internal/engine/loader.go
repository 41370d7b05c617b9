package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"tablecheck/internal/domain"
	"tablecheck/internal/quality"
)

// Loader reads dataset files into quality.Table values through DuckDB.
// Every column is loaded as VARCHAR; type interpretation is the quality
// engine's job, not the loader's.
type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLoader(db *sql.DB, logger *slog.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// EnsureExcelSupport installs and loads DuckDB's excel extension.
// Best-effort: CSV-only deployments work without it.
func (l *Loader) EnsureExcelSupport(ctx context.Context) {
	for _, stmt := range []string{"INSTALL excel", "LOAD excel"} {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			l.logger.Warn("excel extension unavailable, xlsx uploads will fail to load",
				"stmt", stmt, "error", err)
			return
		}
	}
}

// Load reads the file at path into a Table. The delimiter applies to CSV
// only.
func (l *Loader) Load(ctx context.Context, path string, fileType domain.FileType, delimiter string) (*quality.Table, error) {
	query, err := buildReadQuery(path, fileType, delimiter)
	if err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dataset columns: %w", err)
	}

	table := &quality.Table{Columns: columns}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}

		row := make([]quality.Value, len(columns))
		for i, c := range cells {
			row[i] = quality.Value{Raw: c.String, Null: !c.Valid}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read dataset rows: %w", err)
	}
	return table, nil
}

// buildReadQuery renders the DuckDB read call for a dataset file.
// DuckDB table functions do not take bound parameters, so the path and
// delimiter are escaped as SQL string literals.
func buildReadQuery(path string, fileType domain.FileType, delimiter string) (string, error) {
	switch fileType {
	case domain.FileTypeCSV:
		if delimiter == "" {
			delimiter = ","
		}
		return fmt.Sprintf(
			"SELECT * FROM read_csv(%s, delim=%s, header=true, all_varchar=true, sample_size=-1)",
			quoteLiteral(path), quoteLiteral(delimiter)), nil
	case domain.FileTypeExcel:
		return fmt.Sprintf(
			"SELECT * FROM read_xlsx(%s, all_varchar=true)",
			quoteLiteral(path)), nil
	default:
		return "", domain.ErrValidation("unknown file type %q", fileType)
	}
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
