// Package engine loads uploaded datasets into memory through DuckDB and
// sniffs CSV dialects.
package engine

import "strings"

// sniffSampleSize is how many leading bytes of a CSV are inspected.
const sniffSampleSize = 4096

// csvDelimiters are the candidate delimiters, in preference order.
var csvDelimiters = []string{",", ";", "\t", "|"}

// SniffDelimiter guesses the delimiter of a CSV file from its first bytes.
// A candidate wins when every sampled line contains it the same number of
// times; ties go to the candidate with the most columns. Falls back to a
// comma when nothing fits.
func SniffDelimiter(data []byte) string {
	sample := data
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}

	lines := sampleLines(string(sample), 10)
	if len(lines) == 0 {
		return ","
	}

	best := ","
	bestCount := 0
	for _, delim := range csvDelimiters {
		count := strings.Count(lines[0], delim)
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if strings.Count(line, delim) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best = delim
			bestCount = count
		}
	}
	return best
}

// sampleLines returns up to max complete, non-empty lines. The final line is
// dropped when the sample was truncated mid-line.
func sampleLines(sample string, max int) []string {
	raw := strings.Split(sample, "\n")
	if len(raw) > 1 && !strings.HasSuffix(sample, "\n") {
		raw = raw[:len(raw)-1]
	}
	var lines []string
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}
