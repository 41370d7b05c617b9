package quality

import (
	"fmt"
	"sort"
	"time"

	"tablecheck/internal/domain"
)

// checkDuplicateRows flags rows that are identical on every column. The
// first occurrence is kept; all others carry a delete suggestion.
func checkDuplicateRows(t *Table, _ *Ruleset) []domain.Finding {
	allCols := make([]int, len(t.Columns))
	for i := range allCols {
		allCols[i] = i
	}

	groups := map[string][]int{}
	for i := range t.Rows {
		key := t.rowKey(i, allCols)
		groups[key] = append(groups[key], i)
	}

	corrections := map[int]domain.RowCorrection{}
	var rows []int
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		rows = append(rows, group...)
		// Keep the first occurrence, suggest dropping the rest.
		for _, i := range group[1:] {
			corrections[i] = domain.RowCorrection{
				Default:    t.rowMap(i),
				Correction: nil,
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Ints(rows)

	return []domain.Finding{{
		Check:    CheckDuplicateRows,
		Severity: domain.SeverityError,
		Message: fmt.Sprintf("There are %d exact duplicate rows (all columns identical). Example rows: %v. Keep the first occurrence, drop the others.",
			len(rows), examples(rows)),
		Rows:        examples(rows),
		RowCount:    len(rows),
		Corrections: corrections,
	}}
}

// nearDuplicateWindow is the maximum sale-date gap for two otherwise
// identical rows to count as near-duplicates.
const nearDuplicateWindow = time.Second

// checkNearDuplicates flags pairs of rows identical on every column except
// the sale date, with timestamps within one second. Both rows are reported;
// either one is a candidate to drop.
func checkNearDuplicates(t *Table, rs *Ruleset) []domain.Finding {
	dateIdx := t.ColumnIndex(rs.Roles.SaleDate)
	if dateIdx < 0 {
		return nil
	}

	otherCols := make([]int, 0, len(t.Columns)-1)
	for i := range t.Columns {
		if i != dateIdx {
			otherCols = append(otherCols, i)
		}
	}

	groups := map[string][]int{}
	for i := range t.Rows {
		key := t.rowKey(i, otherCols)
		groups[key] = append(groups[key], i)
	}

	type member struct {
		row int
		at  time.Time
	}
	corrections := map[int]domain.RowCorrection{}
	pairs := 0
	var rows []int
	seen := map[int]bool{}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		var members []member
		for _, i := range group {
			if at, ok := t.Rows[i][dateIdx].Time(); ok {
				members = append(members, member{row: i, at: at})
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(a, b int) bool { return members[a].at.Before(members[b].at) })

		for i := 1; i < len(members); i++ {
			prev, cur := members[i-1], members[i]
			if cur.at.Sub(prev.at) > nearDuplicateWindow {
				continue
			}
			pairs++
			for _, m := range []member{prev, cur} {
				if seen[m.row] {
					continue
				}
				seen[m.row] = true
				rows = append(rows, m.row)
				corrections[m.row] = domain.RowCorrection{
					Default:    t.rowMap(m.row),
					Correction: nil,
				}
			}
		}
	}
	if pairs == 0 {
		return nil
	}
	sort.Ints(rows)

	return []domain.Finding{{
		Check:    CheckNearDuplicates,
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("Detected %d near-duplicate row pair(s): identical on all columns except '%s', which differs by at most 1 second.",
			pairs, rs.Roles.SaleDate),
		Columns:     []string{rs.Roles.SaleDate},
		Rows:        examples(rows),
		RowCount:    len(rows),
		Corrections: corrections,
	}}
}
