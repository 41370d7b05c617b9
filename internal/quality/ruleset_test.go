package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuleset(t *testing.T) {
	content := `
expected_columns: [Product, Qty]
roles:
  product: Product
  quantity: Qty
numeric_columns: [Qty]
ranges:
  Qty:
    min: 0
    max: 100
unique_columns: [Product]
canonical_suppliers: [Acme]
`
	path := filepath.Join(t.TempDir(), "ruleset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rs, err := LoadRuleset(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "Qty"}, rs.ExpectedColumns)
	assert.Equal(t, "Product", rs.Roles.Product)
	assert.Equal(t, "Qty", rs.Roles.Quantity)
	require.Contains(t, rs.Ranges, "Qty")
	assert.Equal(t, 0.0, *rs.Ranges["Qty"].Min)
	assert.Equal(t, 100.0, *rs.Ranges["Qty"].Max)
	assert.Equal(t, []string{"Acme"}, rs.CanonicalSuppliers)
}

func TestLoadRulesetMissingFile(t *testing.T) {
	_, err := LoadRuleset(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRulesetBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o600))

	_, err := LoadRuleset(path)
	assert.Error(t, err)
}

func TestDefaultRuleset(t *testing.T) {
	rs := DefaultRuleset()

	assert.Len(t, rs.ExpectedColumns, 23)
	assert.Equal(t, "OrderList", rs.Roles.Supplier)
	assert.Equal(t, "Sale Date", rs.Roles.SaleDate)
	assert.Contains(t, rs.Ranges, "Sale VAT Rate")
	assert.Equal(t, 100.0, *rs.Ranges["Sale VAT Rate"].Max)
	assert.Contains(t, rs.UniqueColumns, "Sale ID")
	assert.Contains(t, rs.OutlierColumns, "Turnover")
	assert.Equal(t, []string{"Pharmax"}, rs.CanonicalSuppliers)
}
