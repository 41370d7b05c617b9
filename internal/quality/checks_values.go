package quality

import (
	"fmt"
	"time"

	"tablecheck/internal/domain"
)

// checkTypeMismatch flags declared-numeric columns holding values that do
// not parse as numbers.
func checkTypeMismatch(t *Table, rs *Ruleset) []domain.Finding {
	var findings []domain.Finding
	for _, col := range rs.NumericColumns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}

		var rows []int
		var values []string
		for i, row := range t.Rows {
			v := row[idx]
			if v.Missing() {
				continue
			}
			if _, ok := v.Float(); !ok {
				rows = append(rows, i)
				if len(values) < 3 {
					values = append(values, v.Trimmed())
				}
			}
		}
		if len(rows) == 0 {
			continue
		}

		findings = append(findings, domain.Finding{
			Check:    CheckTypeMismatch,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Column '%s' looks numeric but contains %d non-numeric value(s), e.g. %q at rows %v.",
				col, len(rows), values, examples(rows)),
			Columns:  []string{col},
			Rows:     examples(rows),
			RowCount: len(rows),
		})
	}
	return findings
}

// checkValueRanges flags numeric values outside the configured bounds.
// Closed intervals (both bounds set) are errors; open-ended bounds are
// warnings.
func checkValueRanges(t *Table, rs *Ruleset) []domain.Finding {
	var findings []domain.Finding
	for _, col := range sortedKeys(rs.Ranges) {
		bounds := rs.Ranges[col]
		idx := t.ColumnIndex(col)
		if idx < 0 || (bounds.Min == nil && bounds.Max == nil) {
			continue
		}

		var rows []int
		for i, row := range t.Rows {
			v, ok := row[idx].Float()
			if !ok {
				continue
			}
			if (bounds.Min != nil && v < *bounds.Min) || (bounds.Max != nil && v > *bounds.Max) {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			continue
		}

		severity := domain.SeverityWarning
		if bounds.Min != nil && bounds.Max != nil {
			severity = domain.SeverityError
		}
		findings = append(findings, domain.Finding{
			Check:    CheckValueRange,
			Severity: severity,
			Message: fmt.Sprintf("Column '%s' has %d value(s) outside %s. Example rows: %v.",
				col, len(rows), formatRange(bounds), examples(rows)),
			Columns:  []string{col},
			Rows:     examples(rows),
			RowCount: len(rows),
		})
	}
	return findings
}

func formatRange(r Range) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("[%g, %g]", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("[%g, +inf)", *r.Min)
	default:
		return fmt.Sprintf("(-inf, %g]", *r.Max)
	}
}

// Rare-category thresholds: a value is rare when it covers less than 0.1%
// of non-missing rows and occurs fewer than 3 times.
const (
	rareCategoryShare = 0.1
	rareCategoryCount = 3
)

// checkRareCategories flags category values that barely occur.
func checkRareCategories(t *Table, rs *Ruleset) []domain.Finding {
	var findings []domain.Finding
	for _, col := range rs.CategoricalColumns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}

		counts := map[string]int{}
		firstRow := map[string]int{}
		total := 0
		for i, row := range t.Rows {
			if row[idx].Missing() {
				continue
			}
			v := row[idx].Trimmed()
			if _, ok := counts[v]; !ok {
				firstRow[v] = i
			}
			counts[v]++
			total++
		}
		if total == 0 {
			continue
		}

		var rare []string
		var rows []int
		rareRows := 0
		for _, v := range sortedKeys(counts) {
			n := counts[v]
			share := float64(n) / float64(total) * 100
			if share < rareCategoryShare && n < rareCategoryCount {
				rareRows += n
				if len(rare) < exampleRowLimit {
					rare = append(rare, v)
					rows = append(rows, firstRow[v])
				}
			}
		}
		if len(rare) == 0 {
			continue
		}

		findings = append(findings, domain.Finding{
			Check:    CheckRareCategory,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Column '%s' has %d rare category value(s) (<%.1f%% share, <%d occurrences), e.g. %q.",
				col, len(rare), rareCategoryShare, rareCategoryCount, rare),
			Columns:  []string{col},
			Rows:     rows,
			RowCount: rareRows,
		})
	}
	return findings
}

// checkUniqueConstraints flags duplicated values in declared-unique columns.
// Duplicate sale IDs are errors; duplicate barcodes are expected across
// repeat sales and are reported as informational.
func checkUniqueConstraints(t *Table, rs *Ruleset) []domain.Finding {
	var findings []domain.Finding
	for _, col := range rs.UniqueColumns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}

		counts := map[string]int{}
		for _, row := range t.Rows {
			if row[idx].Missing() {
				continue
			}
			counts[row[idx].Trimmed()]++
		}

		var dupValues []string
		dupRows := 0
		for _, v := range sortedKeys(counts) {
			if counts[v] > 1 {
				dupRows += counts[v]
				if len(dupValues) < 3 {
					dupValues = append(dupValues, v)
				}
			}
		}
		if dupRows == 0 {
			continue
		}

		severity := domain.SeverityWarning
		switch col {
		case rs.Roles.SaleID:
			severity = domain.SeverityError
		case rs.Roles.Barcode:
			severity = domain.SeverityInfo
		}
		findings = append(findings, domain.Finding{
			Check:    CheckUniqueViolation,
			Severity: severity,
			Message: fmt.Sprintf("Column '%s' should be unique but has %d row(s) sharing values, e.g. %q.",
				col, dupRows, dupValues),
			Columns:  []string{col},
			RowCount: dupRows,
		})
	}
	return findings
}

// checkReferential verifies that a barcode maps to a single product (error)
// and a single trade price and RRP (warnings).
func checkReferential(t *Table, rs *Ruleset) []domain.Finding {
	barcodeIdx := t.ColumnIndex(rs.Roles.Barcode)
	if barcodeIdx < 0 {
		return nil
	}

	targets := []struct {
		col      string
		severity domain.Severity
		noun     string
	}{
		{rs.Roles.Product, domain.SeverityError, "products"},
		{rs.Roles.TradePrice, domain.SeverityWarning, "trade prices"},
		{rs.Roles.RRP, domain.SeverityWarning, "RRPs"},
	}

	var findings []domain.Finding
	for _, target := range targets {
		idx := t.ColumnIndex(target.col)
		if idx < 0 {
			continue
		}

		values := map[string]map[string]bool{}
		rowsByBarcode := map[string][]int{}
		for i, row := range t.Rows {
			if row[barcodeIdx].Missing() || row[idx].Missing() {
				continue
			}
			barcode := row[barcodeIdx].Trimmed()
			if values[barcode] == nil {
				values[barcode] = map[string]bool{}
			}
			values[barcode][row[idx].Trimmed()] = true
			rowsByBarcode[barcode] = append(rowsByBarcode[barcode], i)
		}

		var offenders []string
		var rows []int
		affected := 0
		for _, barcode := range sortedKeys(values) {
			if len(values[barcode]) > 1 {
				affected += len(rowsByBarcode[barcode])
				if len(offenders) < 3 {
					offenders = append(offenders, barcode)
					rows = append(rows, rowsByBarcode[barcode][0])
				}
			}
		}
		if affected == 0 {
			continue
		}

		findings = append(findings, domain.Finding{
			Check:    CheckReferential,
			Severity: target.severity,
			Message: fmt.Sprintf("Barcode(s) %q map to multiple %s ('%s' column), affecting %d row(s).",
				offenders, target.noun, target.col, affected),
			Columns:  []string{rs.Roles.Barcode, target.col},
			Rows:     rows,
			RowCount: affected,
		})
	}
	return findings
}

// checkDateSanity flags unparseable sale dates, dates before 1900, and
// dates more than a year in the future.
func checkDateSanity(t *Table, rs *Ruleset) []domain.Finding {
	idx := t.ColumnIndex(rs.Roles.SaleDate)
	if idx < 0 {
		return nil
	}

	var invalid, ancient, future []int
	cutoffFuture := time.Now().AddDate(1, 0, 0)
	for i, row := range t.Rows {
		v := row[idx]
		if v.Missing() {
			continue
		}
		at, ok := v.Time()
		if !ok {
			invalid = append(invalid, i)
			continue
		}
		if at.Year() < 1900 {
			ancient = append(ancient, i)
		}
		if at.After(cutoffFuture) {
			future = append(future, i)
		}
	}

	var findings []domain.Finding
	if len(invalid) > 0 {
		findings = append(findings, domain.Finding{
			Check:    CheckDateSanity,
			Severity: domain.SeverityError,
			Message: fmt.Sprintf("Column '%s' has %d unparseable date value(s). Example rows: %v.",
				rs.Roles.SaleDate, len(invalid), examples(invalid)),
			Columns:  []string{rs.Roles.SaleDate},
			Rows:     examples(invalid),
			RowCount: len(invalid),
		})
	}
	if len(ancient) > 0 {
		findings = append(findings, domain.Finding{
			Check:    CheckDateSanity,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Column '%s' has %d date(s) before 1900. Example rows: %v.",
				rs.Roles.SaleDate, len(ancient), examples(ancient)),
			Columns:  []string{rs.Roles.SaleDate},
			Rows:     examples(ancient),
			RowCount: len(ancient),
		})
	}
	if len(future) > 0 {
		findings = append(findings, domain.Finding{
			Check:    CheckDateSanity,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Column '%s' has %d date(s) more than a year in the future. Example rows: %v.",
				rs.Roles.SaleDate, len(future), examples(future)),
			Columns:  []string{rs.Roles.SaleDate},
			Rows:     examples(future),
			RowCount: len(future),
		})
	}
	return findings
}
