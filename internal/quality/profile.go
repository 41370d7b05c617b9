package quality

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the inferred data type of a column.
type Kind string

const (
	KindBoolean     Kind = "boolean"
	KindNumeric     Kind = "numeric"
	KindDate        Kind = "date"
	KindCategorical Kind = "categorical"
	KindString      Kind = "string"
)

// categoricalUniqueRatio is the unique/total cutoff below which a text
// column is considered categorical.
const categoricalUniqueRatio = 0.2

// boolTokens are the values a boolean-ish column may contain.
var boolTokens = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true, "0": true, "1": true,
}

// InferKind classifies a column from its values. Boolean and numeric require
// every non-missing value to conform; a text column with a low unique ratio
// is categorical.
func InferKind(values []Value) Kind {
	var present []Value
	for _, v := range values {
		if !v.Missing() {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return KindString
	}

	isBool, hasWord := true, false
	for _, v := range present {
		tok := strings.ToLower(v.Trimmed())
		if !boolTokens[tok] {
			isBool = false
			break
		}
		if tok != "0" && tok != "1" {
			hasWord = true
		}
	}
	// Pure 0/1 columns are counts, not booleans.
	if isBool && hasWord {
		return KindBoolean
	}

	numeric := true
	for _, v := range present {
		if _, ok := v.Float(); !ok {
			numeric = false
			break
		}
	}
	if numeric {
		return KindNumeric
	}

	dates := true
	for _, v := range present {
		if _, ok := v.Time(); !ok {
			dates = false
			break
		}
	}
	if dates {
		return KindDate
	}

	unique := map[string]bool{}
	for _, v := range present {
		unique[v.Trimmed()] = true
	}
	if float64(len(unique))/float64(len(values)) <= categoricalUniqueRatio {
		return KindCategorical
	}
	return KindString
}

// ColumnProfile summarises one column for the understanding endpoint.
type ColumnProfile struct {
	Name         string
	Kind         Kind
	UniqueCount  int
	MissingCount int
	SampleValues []string // up to 3 non-missing values in row order
}

// Profile summarises every column of the table.
func Profile(t *Table) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(t.Columns))
	for i, name := range t.Columns {
		p := ColumnProfile{Name: name}
		unique := map[string]bool{}
		for _, row := range t.Rows {
			v := row[i]
			if v.Missing() {
				p.MissingCount++
				continue
			}
			unique[v.Trimmed()] = true
			if len(p.SampleValues) < 3 {
				p.SampleValues = append(p.SampleValues, v.Raw)
			}
		}
		p.UniqueCount = len(unique)
		values, _ := t.Column(name)
		p.Kind = InferKind(values)
		out = append(out, p)
	}
	return out
}

// Observations reports dataset-level signals: the top three columns by
// missing count, or an all-clear line.
func Observations(profiles []ColumnProfile) []string {
	sorted := make([]ColumnProfile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MissingCount > sorted[j].MissingCount
	})

	var out []string
	for _, p := range sorted {
		if len(out) == 3 {
			break
		}
		if p.MissingCount > 0 {
			out = append(out, fmt.Sprintf("%s has %d missing values", p.Name, p.MissingCount))
		}
	}
	if len(out) == 0 {
		out = append(out, "no major quality signal detected")
	}
	return out
}
