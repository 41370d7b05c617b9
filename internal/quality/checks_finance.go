package quality

import (
	"fmt"
	"math"
	"sort"

	"tablecheck/internal/domain"
)

// financeTolerance absorbs rounding in monetary identities.
const financeTolerance = 0.02

// checkBusinessRules verifies the financial cross-field identities:
//
//	trade price <= RRP
//	turnover == turnover ex VAT + VAT amount
//	quantity 0 implies turnover 0
//	profit == turnover ex VAT - trade price * quantity
func checkBusinessRules(t *Table, rs *Ruleset) []domain.Finding {
	roles := rs.Roles
	col := func(name string) int { return t.ColumnIndex(name) }
	tradeIdx, rrpIdx := col(roles.TradePrice), col(roles.RRP)
	turnoverIdx, exVATIdx, vatIdx := col(roles.Turnover), col(roles.TurnoverExVAT), col(roles.VATAmount)
	qtyIdx, profitIdx := col(roles.Quantity), col(roles.Profit)

	var findings []domain.Finding

	if tradeIdx >= 0 && rrpIdx >= 0 {
		var rows []int
		for i, row := range t.Rows {
			trade, ok1 := row[tradeIdx].Float()
			rrp, ok2 := row[rrpIdx].Float()
			if ok1 && ok2 && trade > rrp {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			findings = append(findings, domain.Finding{
				Check:    CheckBusinessRule,
				Severity: domain.SeverityError,
				Message: fmt.Sprintf("'%s' exceeds '%s' in %d row(s). Example rows: %v.",
					roles.TradePrice, roles.RRP, len(rows), examples(rows)),
				Columns:  []string{roles.TradePrice, roles.RRP},
				Rows:     examples(rows),
				RowCount: len(rows),
			})
		}
	}

	if turnoverIdx >= 0 && exVATIdx >= 0 && vatIdx >= 0 {
		var rows []int
		for i, row := range t.Rows {
			turnover, ok1 := row[turnoverIdx].Float()
			exVAT, ok2 := row[exVATIdx].Float()
			vat, ok3 := row[vatIdx].Float()
			if ok1 && ok2 && ok3 && math.Abs(turnover-(exVAT+vat)) > financeTolerance {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			findings = append(findings, domain.Finding{
				Check:    CheckBusinessRule,
				Severity: domain.SeverityError,
				Message: fmt.Sprintf("'%s' != '%s' + '%s' (tolerance %.2f) in %d row(s). Example rows: %v.",
					roles.Turnover, roles.TurnoverExVAT, roles.VATAmount, financeTolerance, len(rows), examples(rows)),
				Columns:  []string{roles.Turnover, roles.TurnoverExVAT, roles.VATAmount},
				Rows:     examples(rows),
				RowCount: len(rows),
			})
		}
	}

	if qtyIdx >= 0 && turnoverIdx >= 0 {
		var rows []int
		for i, row := range t.Rows {
			qty, ok1 := row[qtyIdx].Float()
			turnover, ok2 := row[turnoverIdx].Float()
			if ok1 && ok2 && qty == 0 && turnover != 0 {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			findings = append(findings, domain.Finding{
				Check:    CheckBusinessRule,
				Severity: domain.SeverityWarning,
				Message: fmt.Sprintf("%d row(s) have '%s' = 0 but non-zero '%s'. Example rows: %v.",
					len(rows), roles.Quantity, roles.Turnover, examples(rows)),
				Columns:  []string{roles.Quantity, roles.Turnover},
				Rows:     examples(rows),
				RowCount: len(rows),
			})
		}
	}

	if profitIdx >= 0 && exVATIdx >= 0 && tradeIdx >= 0 && qtyIdx >= 0 {
		var rows []int
		for i, row := range t.Rows {
			profit, ok1 := row[profitIdx].Float()
			exVAT, ok2 := row[exVATIdx].Float()
			trade, ok3 := row[tradeIdx].Float()
			qty, ok4 := row[qtyIdx].Float()
			if ok1 && ok2 && ok3 && ok4 && math.Abs(profit-(exVAT-trade*qty)) > financeTolerance {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			findings = append(findings, domain.Finding{
				Check:    CheckBusinessRule,
				Severity: domain.SeverityWarning,
				Message: fmt.Sprintf("'%s' != '%s' - '%s' * '%s' (tolerance %.2f) in %d row(s). Example rows: %v.",
					roles.Profit, roles.TurnoverExVAT, roles.TradePrice, roles.Quantity, financeTolerance, len(rows), examples(rows)),
				Columns:  []string{roles.Profit, roles.TurnoverExVAT, roles.TradePrice, roles.Quantity},
				Rows:     examples(rows),
				RowCount: len(rows),
			})
		}
	}

	return findings
}

// Outlier parameters: Tukey fences widened to 3x IQR, reported only when
// more than 1% of values fall outside.
const (
	outlierIQRFactor   = 3.0
	outlierShareCutoff = 0.01
)

// checkOutliers applies a wide IQR fence to the configured numeric columns.
func checkOutliers(t *Table, rs *Ruleset) []domain.Finding {
	var findings []domain.Finding
	for _, col := range rs.OutlierColumns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			continue
		}

		var sortedVals []float64
		var rowIdx []int
		var vals []float64
		for i, row := range t.Rows {
			if v, ok := row[idx].Float(); ok {
				vals = append(vals, v)
				rowIdx = append(rowIdx, i)
			}
		}
		if len(vals) < 4 {
			continue
		}
		sortedVals = append(sortedVals, vals...)
		sort.Float64s(sortedVals)

		q1 := quantile(sortedVals, 0.25)
		q3 := quantile(sortedVals, 0.75)
		iqr := q3 - q1
		lower := q1 - outlierIQRFactor*iqr
		upper := q3 + outlierIQRFactor*iqr

		var rows []int
		var exampleVals []float64
		for i, v := range vals {
			if v < lower || v > upper {
				rows = append(rows, rowIdx[i])
				if len(exampleVals) < 3 {
					exampleVals = append(exampleVals, v)
				}
			}
		}
		if len(rows) == 0 || float64(len(rows))/float64(len(vals)) <= outlierShareCutoff {
			continue
		}

		findings = append(findings, domain.Finding{
			Check:    CheckOutlier,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("Column '%s' has %d extreme value(s) outside [%.2f, %.2f], e.g. %v at rows %v.",
				col, len(rows), lower, upper, exampleVals, examples(rows)),
			Columns:  []string{col},
			Rows:     examples(rows),
			RowCount: len(rows),
		})
	}
	return findings
}

// quantile computes the q-th quantile of sorted values with linear
// interpolation, matching the common statistical default.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
