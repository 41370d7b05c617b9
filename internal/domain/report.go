package domain

import "time"

// Severity grades a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// RowCorrection is a suggested fix for one row. Default holds the current
// cell values; Correction holds the proposed replacement. A nil Correction
// means the row should be deleted.
type RowCorrection struct {
	Default    any `json:"default"`
	Correction any `json:"correction"`
}

// Finding is one detected issue. Rows carries example row indexes only;
// RowCount is the full number of affected rows.
type Finding struct {
	Check       string                `json:"check"`
	Severity    Severity              `json:"severity"`
	Message     string                `json:"message"`
	Columns     []string              `json:"columns,omitempty"`
	Rows        []int                 `json:"rows,omitempty"`
	RowCount    int                   `json:"row_count,omitempty"`
	Corrections map[int]RowCorrection `json:"corrections,omitempty"`
}

// Report is one analysis run over a dataset. Version counts the runs for
// the dataset, starting at 1; it is derived, not stored.
type Report struct {
	ID           int64     `json:"id"`
	DatasetID    string    `json:"dataset_id"`
	Version      int64     `json:"version,omitempty"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	InfoCount    int       `json:"info_count"`
	Summary      string    `json:"summary"`
	Findings     []Finding `json:"findings"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tally recomputes the severity counters from the findings.
func (r *Report) Tally() {
	r.ErrorCount, r.WarningCount, r.InfoCount = 0, 0, 0
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		default:
			r.InfoCount++
		}
	}
}
