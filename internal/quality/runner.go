package quality

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tablecheck/internal/domain"
)

// Run executes the full check battery against the table. Checks are
// independent and stateless, so they run concurrently; findings come back
// in battery order regardless of completion order.
func Run(ctx context.Context, t *Table, rs *Ruleset) ([]domain.Finding, error) {
	checks := Checks()
	results := make([][]domain.Finding, len(checks))

	g, ctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = check.Run(t, rs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run checks: %w", err)
	}

	var findings []domain.Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	return findings, nil
}

// Summarize renders a short human-readable digest of an analysis run.
func Summarize(t *Table, findings []domain.Finding) string {
	var errors, warnings, infos int
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset has %d rows and %d columns. ", t.NumRows(), len(t.Columns))
	if len(findings) == 0 {
		b.WriteString("No errors or warnings detected.")
		return b.String()
	}
	fmt.Fprintf(&b, "Detected %d issue(s): %d error(s), %d warning(s), %d informational.",
		len(findings), errors, warnings, infos)
	return b.String()
}
