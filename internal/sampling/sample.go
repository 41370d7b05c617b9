// Package sampling picks representative row subsets from loaded tables so
// previews and LLM prompts stay bounded on large datasets.
package sampling

import (
	"math/rand"
	"sort"

	"tablecheck/internal/quality"
)

// sampleSeed fixes the middle-band draw so repeated samples of the same
// dataset return the same rows.
const sampleSeed = 42

// Smart returns up to maxRows rows. Small tables come back whole. Large
// tables are sampled in three bands: the first third of the budget from the
// head, a random third from the middle, and the final third from the tail,
// with original row order preserved throughout.
func Smart(t *quality.Table, maxRows int) *quality.Table {
	if maxRows <= 0 || t.NumRows() <= maxRows {
		return t
	}

	headN := maxRows / 3
	tailN := maxRows / 3
	midN := maxRows - headN - tailN

	total := t.NumRows()
	midStart := headN
	midEnd := total - tailN

	picked := make([]int, 0, maxRows)
	for i := 0; i < headN; i++ {
		picked = append(picked, i)
	}

	rng := rand.New(rand.NewSource(sampleSeed)) //nolint:gosec // deterministic sampling, not crypto
	mid := rng.Perm(midEnd - midStart)[:midN]
	for _, off := range mid {
		picked = append(picked, midStart+off)
	}

	for i := midEnd; i < total; i++ {
		picked = append(picked, i)
	}
	sort.Ints(picked)

	out := &quality.Table{Columns: t.Columns, Rows: make([][]quality.Value, 0, len(picked))}
	for _, i := range picked {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}
