package quality

import (
	"fmt"
	"sort"

	"tablecheck/internal/domain"
)

// Check codes. One code per rule; findings carry them so reports and the
// chat context can group issues.
const (
	CheckColumnStructure = "COLUMN_STRUCTURE"
	CheckMissingValues   = "MISSING_VALUES"
	CheckDuplicateRows   = "DUPLICATE_ROWS"
	CheckNearDuplicates  = "NEAR_DUPLICATE_ROWS"
	CheckWhitespace      = "WHITESPACE"
	CheckSupplierVariant = "SUPPLIER_VARIANT"
	CheckCategoryDrift   = "CATEGORY_DRIFT"
	CheckTypeMismatch    = "TYPE_MISMATCH"
	CheckValueRange      = "VALUE_RANGE"
	CheckRareCategory    = "RARE_CATEGORY"
	CheckUniqueViolation = "UNIQUE_VIOLATION"
	CheckReferential     = "REFERENTIAL"
	CheckDateSanity      = "DATE_SANITY"
	CheckBusinessRule    = "BUSINESS_RULE"
	CheckOutlier         = "OUTLIER"
)

// exampleRowLimit caps how many example row indexes a finding carries.
const exampleRowLimit = 5

// Check is one stateless rule: a pure function from table and ruleset to
// findings. Checks tolerate missing columns and unparseable cells.
type Check struct {
	Code string
	Run  func(t *Table, rs *Ruleset) []domain.Finding
}

// Checks returns the fixed battery in report order.
func Checks() []Check {
	return []Check{
		{CheckColumnStructure, checkColumnStructure},
		{CheckMissingValues, checkMissingValues},
		{CheckDuplicateRows, checkDuplicateRows},
		{CheckNearDuplicates, checkNearDuplicates},
		{CheckWhitespace, checkWhitespace},
		{CheckSupplierVariant, checkSupplierVariants},
		{CheckCategoryDrift, checkCategoryDrift},
		{CheckTypeMismatch, checkTypeMismatch},
		{CheckValueRange, checkValueRanges},
		{CheckRareCategory, checkRareCategories},
		{CheckUniqueViolation, checkUniqueConstraints},
		{CheckReferential, checkReferential},
		{CheckDateSanity, checkDateSanity},
		{CheckBusinessRule, checkBusinessRules},
		{CheckOutlier, checkOutliers},
	}
}

// examples returns up to exampleRowLimit leading row indexes.
func examples(rows []int) []int {
	if len(rows) > exampleRowLimit {
		return rows[:exampleRowLimit]
	}
	return rows
}

// pct formats a share of total as a percentage string.
func pct(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

// sortedKeys returns the map's keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
