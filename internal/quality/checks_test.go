package quality

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/domain"
)

func findingsFor(fs []domain.Finding, code string) []domain.Finding {
	var out []domain.Finding
	for _, f := range fs {
		if f.Check == code {
			out = append(out, f)
		}
	}
	return out
}

func TestCheckColumnStructure(t *testing.T) {
	rs := &Ruleset{ExpectedColumns: []string{"a", "b", "c"}}
	tbl := testTable([]string{"a", "c", "extra"}, []string{"1", "2", "3"})

	fs := checkColumnStructure(tbl, rs)
	require.Len(t, fs, 2)

	assert.Equal(t, domain.SeverityError, fs[0].Severity)
	assert.Equal(t, []string{"b"}, fs[0].Columns)
	assert.Equal(t, domain.SeverityWarning, fs[1].Severity)
	assert.Equal(t, []string{"extra"}, fs[1].Columns)
}

func TestCheckColumnStructureClean(t *testing.T) {
	rs := &Ruleset{ExpectedColumns: []string{"a", "b"}}
	tbl := testTable([]string{"a", "b"}, []string{"1", "2"})
	assert.Empty(t, checkColumnStructure(tbl, rs))
}

func TestCheckMissingValuesImputesProduct(t *testing.T) {
	rs := &Ruleset{Roles: Roles{Product: "Product", Barcode: "Barcode"}}
	tbl := testTable([]string{"Product", "Barcode"},
		[]string{"Aspirin", "111"},
		[]string{"", "111"},
		[]string{"null", "222"},
	)

	fs := findingsFor(checkMissingValues(tbl, rs), CheckMissingValues)
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, domain.SeverityError, f.Severity)
	assert.Equal(t, []string{"Product"}, f.Columns)
	assert.Equal(t, 2, f.RowCount)
	require.Contains(t, f.Corrections, 1)
	require.Contains(t, f.Corrections, 2)

	// Barcode 111 is known, so the most frequent product is suggested.
	corr := f.Corrections[1].Correction.(map[string]any)
	assert.Equal(t, "Aspirin", corr["Product"])

	// Barcode 222 has no non-missing product anywhere, so no suggestion.
	corr = f.Corrections[2].Correction.(map[string]any)
	assert.Nil(t, corr["Product"])
}

func TestCheckDuplicateRows(t *testing.T) {
	tbl := testTable([]string{"a", "b"},
		[]string{"x", "1"},
		[]string{"x", "1"},
		[]string{"y", "2"},
		[]string{"x", "1"},
	)

	fs := checkDuplicateRows(tbl, &Ruleset{})
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, domain.SeverityError, f.Severity)
	assert.Equal(t, 3, f.RowCount)
	// First occurrence survives; rows 1 and 3 get delete suggestions.
	assert.NotContains(t, f.Corrections, 0)
	require.Contains(t, f.Corrections, 1)
	require.Contains(t, f.Corrections, 3)
	assert.Nil(t, f.Corrections[1].Correction)
}

func TestCheckNearDuplicates(t *testing.T) {
	rs := &Ruleset{Roles: Roles{SaleDate: "Sale Date"}}
	tbl := testTable([]string{"Product", "Sale Date"},
		[]string{"Aspirin", "2024-01-01 10:00:00"},
		[]string{"Aspirin", "2024-01-01 10:00:01"},
		[]string{"Aspirin", "2024-01-01 12:00:00"},
		[]string{"Ibuprofen", "2024-01-01 10:00:00"},
	)

	fs := checkNearDuplicates(tbl, rs)
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, domain.SeverityWarning, f.Severity)
	assert.Equal(t, 2, f.RowCount)
	assert.Contains(t, f.Corrections, 0)
	assert.Contains(t, f.Corrections, 1)
	assert.NotContains(t, f.Corrections, 2)
}

func TestCheckWhitespace(t *testing.T) {
	rs := &Ruleset{Roles: Roles{Product: "Product"}}
	tbl := testTable([]string{"Product"},
		[]string{"Aspirin  500mg"},
		[]string{" Ibuprofen"},
		[]string{"Paracetamol"},
	)

	fs := checkWhitespace(tbl, rs)
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, 2, f.RowCount)
	corr := f.Corrections[0].Correction.(map[string]any)
	assert.Equal(t, "Aspirin 500mg", corr["Product"])
	corr = f.Corrections[1].Correction.(map[string]any)
	assert.Equal(t, "Ibuprofen", corr["Product"])
}

func TestCheckSupplierVariants(t *testing.T) {
	rs := &Ruleset{
		Roles:              Roles{Supplier: "OrderList"},
		CanonicalSuppliers: []string{"Pharmax"},
	}
	tbl := testTable([]string{"OrderList"},
		[]string{"Pharmax"},
		[]string{"PHARMAX"},
		[]string{"pharmax ltd"},
		[]string{"Medico"},
	)

	fs := checkSupplierVariants(tbl, rs)
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, 2, f.RowCount)
	require.Contains(t, f.Corrections, 1)
	require.Contains(t, f.Corrections, 2)
	corr := f.Corrections[2].Correction.(map[string]any)
	assert.Equal(t, "Pharmax", corr["OrderList"])
}

func TestCheckCategoryDrift(t *testing.T) {
	rs := &Ruleset{Roles: Roles{Product: "Product", Department: "Dept"}}
	tbl := testTable([]string{"Product", "Dept"},
		[]string{"Aspirin", "Pharmacy"},
		[]string{"Aspirin", "Front Shop"},
		[]string{"Ibuprofen", "Pharmacy"},
	)

	fs := checkCategoryDrift(tbl, rs)
	require.Len(t, fs, 1)
	f := fs[0]

	assert.Equal(t, 2, f.RowCount)
	corr := f.Corrections[0].Correction.(map[string]any)
	assert.Equal(t, []string{"Front Shop", "Pharmacy"}, corr["Dept"])
}

func TestCheckTypeMismatch(t *testing.T) {
	rs := &Ruleset{NumericColumns: []string{"Qty"}}
	tbl := testTable([]string{"Qty"},
		[]string{"1"},
		[]string{"two"},
		[]string{""},
		[]string{"3.5"},
	)

	fs := checkTypeMismatch(tbl, rs)
	require.Len(t, fs, 1)
	assert.Equal(t, 1, fs[0].RowCount)
	assert.Equal(t, []int{1}, fs[0].Rows)
}

func TestCheckValueRanges(t *testing.T) {
	rs := &Ruleset{Ranges: map[string]Range{
		"Qty":  {Min: f(0)},
		"Rate": {Min: f(0), Max: f(100)},
	}}
	tbl := testTable([]string{"Qty", "Rate"},
		[]string{"5", "20"},
		[]string{"-1", "150"},
	)

	fs := checkValueRanges(tbl, rs)
	require.Len(t, fs, 2)

	byCol := map[string]domain.Finding{}
	for _, f := range fs {
		byCol[f.Columns[0]] = f
	}
	// Open-ended lower bound is a warning, the closed interval is an error.
	assert.Equal(t, domain.SeverityWarning, byCol["Qty"].Severity)
	assert.Equal(t, domain.SeverityError, byCol["Rate"].Severity)
	assert.Equal(t, []int{1}, byCol["Rate"].Rows)
}

func TestCheckRareCategories(t *testing.T) {
	rs := &Ruleset{CategoricalColumns: []string{"Branch"}}

	var rows [][]string
	for i := 0; i < 2500; i++ {
		rows = append(rows, []string{"Main"})
	}
	rows = append(rows, []string{"Typo Branch"})

	fs := checkRareCategories(testTable([]string{"Branch"}, rows...), rs)
	require.Len(t, fs, 1)
	assert.Equal(t, 1, fs[0].RowCount)
	assert.Contains(t, fs[0].Message, "Typo Branch")
	assert.Contains(t, fs[0].Message, "rare category value(s)")
}

func TestCheckRareCategoriesSmallTableClean(t *testing.T) {
	// With only 10 rows a single occurrence is 10%, far above the share
	// threshold, so nothing is flagged.
	rs := &Ruleset{CategoricalColumns: []string{"Branch"}}
	var rows [][]string
	for i := 0; i < 9; i++ {
		rows = append(rows, []string{"Main"})
	}
	rows = append(rows, []string{"Other"})
	assert.Empty(t, checkRareCategories(testTable([]string{"Branch"}, rows...), rs))
}

func TestCheckUniqueConstraints(t *testing.T) {
	rs := &Ruleset{
		UniqueColumns: []string{"Sale ID", "Barcode"},
		Roles:         Roles{SaleID: "Sale ID", Barcode: "Barcode"},
	}
	tbl := testTable([]string{"Sale ID", "Barcode"},
		[]string{"1", "100"},
		[]string{"1", "100"},
		[]string{"2", "200"},
	)

	fs := checkUniqueConstraints(tbl, rs)
	require.Len(t, fs, 2)

	byCol := map[string]domain.Finding{}
	for _, f := range fs {
		byCol[f.Columns[0]] = f
	}
	assert.Equal(t, domain.SeverityError, byCol["Sale ID"].Severity)
	assert.Equal(t, domain.SeverityInfo, byCol["Barcode"].Severity)
	assert.Equal(t, 2, byCol["Sale ID"].RowCount)
}

func TestCheckReferential(t *testing.T) {
	rs := DefaultRuleset()
	tbl := testTable([]string{"Barcode", "Product", "Trade Price", "RRP"},
		[]string{"100", "Aspirin", "1.00", "2.00"},
		[]string{"100", "Aspirin 500", "1.00", "2.00"},
		[]string{"200", "Ibuprofen", "1.50", "3.00"},
		[]string{"200", "Ibuprofen", "1.60", "3.00"},
	)

	fs := checkReferential(tbl, rs)
	require.Len(t, fs, 2)

	assert.Equal(t, domain.SeverityError, fs[0].Severity)
	assert.Contains(t, fs[0].Message, "products")
	assert.Equal(t, 2, fs[0].RowCount)

	assert.Equal(t, domain.SeverityWarning, fs[1].Severity)
	assert.Contains(t, fs[1].Message, "trade prices")
}

func TestCheckDateSanity(t *testing.T) {
	rs := &Ruleset{Roles: Roles{SaleDate: "Sale Date"}}
	tbl := testTable([]string{"Sale Date"},
		[]string{"2024-05-01"},
		[]string{"not-a-date"},
		[]string{"1850-01-01"},
		[]string{"2999-01-01"},
		[]string{""},
	)

	fs := checkDateSanity(tbl, rs)
	require.Len(t, fs, 3)

	assert.Equal(t, domain.SeverityError, fs[0].Severity)
	assert.Equal(t, []int{1}, fs[0].Rows)
	assert.Equal(t, domain.SeverityWarning, fs[1].Severity)
	assert.Equal(t, []int{2}, fs[1].Rows)
	assert.Equal(t, domain.SeverityWarning, fs[2].Severity)
	assert.Equal(t, []int{3}, fs[2].Rows)
}

func TestCheckBusinessRules(t *testing.T) {
	rs := DefaultRuleset()
	cols := []string{"Trade Price", "RRP", "Turnover", "Turnover ex VAT", "Vat Amount", "Qty Sold", "Profit"}
	tbl := testTable(cols,
		// Clean row: turnover = exvat + vat, profit = exvat - trade*qty.
		[]string{"1.00", "2.00", "2.40", "2.00", "0.40", "1", "1.00"},
		// Trade above RRP.
		[]string{"5.00", "3.00", "3.60", "3.00", "0.60", "1", "-2.00"},
		// Turnover identity broken.
		[]string{"1.00", "2.00", "10.00", "8.00", "1.00", "4", "4.00"},
		// Zero quantity with non-zero turnover (profit identity holds: 2-0=2).
		[]string{"1.00", "2.00", "2.40", "2.00", "0.40", "0", "2.00"},
	)

	fs := checkBusinessRules(tbl, rs)
	require.Len(t, fs, 3)

	assert.Equal(t, domain.SeverityError, fs[0].Severity)
	assert.Equal(t, []int{1}, fs[0].Rows)

	assert.Equal(t, domain.SeverityError, fs[1].Severity)
	assert.Equal(t, []int{2}, fs[1].Rows)

	assert.Equal(t, domain.SeverityWarning, fs[2].Severity)
	assert.Equal(t, []int{3}, fs[2].Rows)
}

func TestCheckBusinessRulesProfitIdentity(t *testing.T) {
	rs := DefaultRuleset()
	cols := []string{"Trade Price", "RRP", "Turnover", "Turnover ex VAT", "Vat Amount", "Qty Sold", "Profit"}
	tbl := testTable(cols,
		[]string{"1.00", "2.00", "2.40", "2.00", "0.40", "1", "99.00"},
	)

	fs := checkBusinessRules(tbl, rs)
	require.Len(t, fs, 1)
	assert.Equal(t, domain.SeverityWarning, fs[0].Severity)
	assert.Contains(t, fs[0].Message, "Profit")
}

func TestCheckOutliers(t *testing.T) {
	rs := &Ruleset{OutlierColumns: []string{"Turnover"}}

	var rows [][]string
	for i := 0; i < 99; i++ {
		rows = append(rows, []string{strconv.Itoa(10 + i%3)})
	}
	rows = append(rows, []string{"100000"}, []string{"-50000"})

	fs := checkOutliers(testTable([]string{"Turnover"}, rows...), rs)
	require.Len(t, fs, 1)
	assert.Equal(t, domain.SeverityWarning, fs[0].Severity)
	assert.Equal(t, 2, fs[0].RowCount)
	assert.Equal(t, []int{99, 100}, fs[0].Rows)
}

func TestCheckOutliersToleratesSpread(t *testing.T) {
	rs := &Ruleset{OutlierColumns: []string{"Turnover"}}
	tbl := testTable([]string{"Turnover"},
		[]string{"10"}, []string{"20"}, []string{"30"}, []string{"40"}, []string{"50"},
	)
	assert.Empty(t, checkOutliers(tbl, rs))
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantile(sorted, 0.75), 1e-9)
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.5))
}
