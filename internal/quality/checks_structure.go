package quality

import (
	"fmt"
	"strings"

	"tablecheck/internal/domain"
)

// checkColumnStructure compares the table header against the expected
// columns: missing ones are errors, unexpected extras are warnings.
func checkColumnStructure(t *Table, rs *Ruleset) []domain.Finding {
	if len(rs.ExpectedColumns) == 0 {
		return nil
	}

	expected := map[string]bool{}
	for _, c := range rs.ExpectedColumns {
		expected[c] = true
	}
	present := map[string]bool{}
	for _, c := range t.Columns {
		present[c] = true
	}

	var findings []domain.Finding
	var missing []string
	for _, c := range rs.ExpectedColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		findings = append(findings, domain.Finding{
			Check:    CheckColumnStructure,
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("Dataset is missing %d expected column(s): %s.", len(missing), strings.Join(missing, ", ")),
			Columns:  missing,
		})
	}

	var extra []string
	for _, c := range t.Columns {
		if !expected[c] {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		findings = append(findings, domain.Finding{
			Check:    CheckColumnStructure,
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("Dataset has %d unexpected column(s): %s.", len(extra), strings.Join(extra, ", ")),
			Columns:  extra,
		})
	}
	return findings
}

// missingLike treats literal NULL markers as missing on top of blanks.
func missingLike(v Value) bool {
	if v.Missing() {
		return true
	}
	s := strings.ToLower(v.Trimmed())
	return s == "null" || s == "nan" || s == "none"
}

// checkMissingValues reports per-column missing counts. For the product
// column it also suggests imputing the name from the most frequent product
// sharing the row's barcode.
func checkMissingValues(t *Table, rs *Ruleset) []domain.Finding {
	columns := rs.ExpectedColumns
	if len(columns) == 0 {
		columns = t.Columns
	}

	// Barcode -> most frequent product, for product imputation.
	var barcodeToProduct map[string]string
	productIdx := t.ColumnIndex(rs.Roles.Product)
	barcodeIdx := t.ColumnIndex(rs.Roles.Barcode)
	if productIdx >= 0 && barcodeIdx >= 0 {
		counts := map[string]map[string]int{}
		for _, row := range t.Rows {
			if missingLike(row[productIdx]) || row[barcodeIdx].Missing() {
				continue
			}
			barcode := row[barcodeIdx].Trimmed()
			if counts[barcode] == nil {
				counts[barcode] = map[string]int{}
			}
			counts[barcode][row[productIdx].Trimmed()]++
		}
		barcodeToProduct = map[string]string{}
		for barcode, products := range counts {
			best, bestN := "", 0
			for _, p := range sortedKeys(products) {
				if products[p] > bestN {
					best, bestN = p, products[p]
				}
			}
			barcodeToProduct[barcode] = best
		}
	}

	var findings []domain.Finding
	for _, col := range columns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		isProduct := col == rs.Roles.Product

		var rows []int
		for i, row := range t.Rows {
			miss := row[idx].Missing()
			if isProduct {
				miss = missingLike(row[idx])
			}
			if miss {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			continue
		}

		f := domain.Finding{
			Check:    CheckMissingValues,
			Severity: domain.SeverityError,
			Message: fmt.Sprintf("Column '%s' has %d missing values (%s). Example rows: %v.",
				col, len(rows), pct(len(rows), t.NumRows()), examples(rows)),
			Columns:  []string{col},
			Rows:     examples(rows),
			RowCount: len(rows),
		}

		if isProduct && barcodeIdx >= 0 {
			f.Message += " Imputation suggested from barcode where possible."
			f.Corrections = map[int]domain.RowCorrection{}
			for _, i := range rows {
				var suggested any
				if barcode := t.Rows[i][barcodeIdx].Trimmed(); barcode != "" {
					if p, ok := barcodeToProduct[barcode]; ok && p != "" {
						suggested = p
					}
				}
				f.Corrections[i] = domain.RowCorrection{
					Default:    map[string]any{col: nil},
					Correction: map[string]any{col: suggested},
				}
			}
		}
		findings = append(findings, f)
	}
	return findings
}

// collapseSpaces trims and collapses runs of internal whitespace.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkWhitespace flags product names with leading/trailing/multiple
// internal spaces and suggests the collapsed form.
func checkWhitespace(t *Table, rs *Ruleset) []domain.Finding {
	idx := t.ColumnIndex(rs.Roles.Product)
	if idx < 0 {
		return nil
	}

	corrections := map[int]domain.RowCorrection{}
	var rows []int
	for i, row := range t.Rows {
		v := row[idx]
		if v.Null || v.Raw == "" {
			continue
		}
		collapsed := collapseSpaces(v.Raw)
		if collapsed == v.Raw || collapsed == "" {
			continue
		}
		rows = append(rows, i)
		corrections[i] = domain.RowCorrection{
			Default:    map[string]any{rs.Roles.Product: v.Raw},
			Correction: map[string]any{rs.Roles.Product: collapsed},
		}
	}
	if len(rows) == 0 {
		return nil
	}

	return []domain.Finding{{
		Check:    CheckWhitespace,
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("Column '%s' contains whitespace errors in %d rows. Example rows: %v.",
			rs.Roles.Product, len(rows), examples(rows)),
		Columns:     []string{rs.Roles.Product},
		Rows:        examples(rows),
		RowCount:    len(rows),
		Corrections: corrections,
	}}
}

// checkSupplierVariants flags supplier names that normalize to a canonical
// supplier (case, spacing, or suffix drift) and suggests the canonical form.
func checkSupplierVariants(t *Table, rs *Ruleset) []domain.Finding {
	idx := t.ColumnIndex(rs.Roles.Supplier)
	if idx < 0 || len(rs.CanonicalSuppliers) == 0 {
		return nil
	}

	var findings []domain.Finding
	for _, canonical := range rs.CanonicalSuppliers {
		canonLower := strings.ToLower(collapseSpaces(canonical))
		if canonLower == "" {
			continue
		}

		corrections := map[int]domain.RowCorrection{}
		var rows []int
		for i, row := range t.Rows {
			v := row[idx]
			if v.Missing() {
				continue
			}
			normalized := collapseSpaces(v.Raw)
			if strings.HasPrefix(strings.ToLower(normalized), canonLower) && normalized != canonical {
				rows = append(rows, i)
				corrections[i] = domain.RowCorrection{
					Default:    map[string]any{rs.Roles.Supplier: v.Raw},
					Correction: map[string]any{rs.Roles.Supplier: canonical},
				}
			}
		}
		if len(rows) == 0 {
			continue
		}

		findings = append(findings, domain.Finding{
			Check:    CheckSupplierVariant,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Detected %d '%s' supplier name variations (case/spacing/suffix). Suggested canonical name: '%s'.",
				len(rows), canonical, canonical),
			Columns:     []string{rs.Roles.Supplier},
			Rows:        examples(rows),
			RowCount:    len(rows),
			Corrections: corrections,
		})
	}
	return findings
}

// checkCategoryDrift flags products filed under more than one department.
// The correction is the sorted list of candidate departments; picking one
// is left to the caller.
func checkCategoryDrift(t *Table, rs *Ruleset) []domain.Finding {
	productIdx := t.ColumnIndex(rs.Roles.Product)
	deptIdx := t.ColumnIndex(rs.Roles.Department)
	if productIdx < 0 || deptIdx < 0 {
		return nil
	}

	type productDepts struct {
		depts map[string][]int // dept -> rows
	}
	byProduct := map[string]*productDepts{}
	for i, row := range t.Rows {
		if row[productIdx].Missing() || row[deptIdx].Missing() {
			continue
		}
		product := row[productIdx].Trimmed()
		dept := row[deptIdx].Trimmed()
		pd := byProduct[product]
		if pd == nil {
			pd = &productDepts{depts: map[string][]int{}}
			byProduct[product] = pd
		}
		pd.depts[dept] = append(pd.depts[dept], i)
	}

	var findings []domain.Finding
	for _, product := range sortedKeys(byProduct) {
		pd := byProduct[product]
		if len(pd.depts) <= 1 {
			continue
		}

		deptList := sortedKeys(pd.depts)
		corrections := map[int]domain.RowCorrection{}
		var rows []int
		for _, dept := range deptList {
			for _, i := range pd.depts[dept] {
				rows = append(rows, i)
				corrections[i] = domain.RowCorrection{
					Default:    map[string]any{rs.Roles.Department: dept},
					Correction: map[string]any{rs.Roles.Department: deptList},
				}
			}
		}

		findings = append(findings, domain.Finding{
			Check:    CheckCategoryDrift,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Category drift detected for product '%s': found under %d departments %v. Choose the preferred '%s'.",
				product, len(deptList), deptList, rs.Roles.Department),
			Columns:     []string{rs.Roles.Product, rs.Roles.Department},
			Rows:        examples(rows),
			RowCount:    len(rows),
			Corrections: corrections,
		})
	}
	return findings
}
