// Package quality implements the rule-based error-detection engine that
// inspects uploaded tabular datasets. All cells arrive as text; each check
// interprets values independently so a bad cell in one column never stops
// another check.
package quality

import (
	"strconv"
	"strings"
	"time"
)

// Value is one cell of a loaded dataset. Null marks SQL NULL from the loader;
// everything else is carried verbatim as text.
type Value struct {
	Raw  string
	Null bool
}

// Trimmed returns the cell text without surrounding whitespace.
func (v Value) Trimmed() string {
	return strings.TrimSpace(v.Raw)
}

// Missing reports whether the cell is NULL or blank.
func (v Value) Missing() bool {
	return v.Null || v.Trimmed() == ""
}

// Float parses the cell as a number.
func (v Value) Float() (float64, bool) {
	if v.Missing() {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Trimmed(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order when parsing cells as timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// Time parses the cell as a timestamp.
func (v Value) Time() (time.Time, bool) {
	if v.Missing() {
		return time.Time{}, false
	}
	s := v.Trimmed()
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Table is a fully materialised dataset: column names plus row-major cells.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of the named column in row order.
func (t *Table) Column(name string) ([]Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Head returns up to n leading rows as column→text maps, with nil for
// missing cells. Used for previews and LLM context.
func (t *Table) Head(n int) []map[string]any {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]map[string]any, 0, n)
	for _, row := range t.Rows[:n] {
		m := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if row[i].Missing() {
				m[col] = nil
			} else {
				m[col] = row[i].Raw
			}
		}
		out = append(out, m)
	}
	return out
}

// rowMap renders one row as a column→text map, nil for missing cells.
func (t *Table) rowMap(row int) map[string]any {
	m := make(map[string]any, len(t.Columns))
	for i, col := range t.Columns {
		if t.Rows[row][i].Missing() {
			m[col] = nil
		} else {
			m[col] = t.Rows[row][i].Raw
		}
	}
	return m
}

// rowKey renders a row as a grouping key over the given column indexes.
// NULL and empty cells collapse to the same key on purpose: near-duplicate
// detection should not distinguish them.
func (t *Table) rowKey(row int, cols []int) string {
	var b strings.Builder
	for _, c := range cols {
		v := t.Rows[row][c]
		if v.Missing() {
			b.WriteString("\x00")
		} else {
			b.WriteString(v.Raw)
		}
		b.WriteString("\x1f")
	}
	return b.String()
}
