package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range bounds a numeric column. Nil means unbounded on that side.
type Range struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Roles names the columns that carry domain meaning. Empty role values
// disable the checks that need them.
type Roles struct {
	Product       string `yaml:"product"`
	Barcode       string `yaml:"barcode"`
	Supplier      string `yaml:"supplier"`
	Department    string `yaml:"department"`
	SaleDate      string `yaml:"sale_date"`
	SaleID        string `yaml:"sale_id"`
	Quantity      string `yaml:"quantity"`
	Turnover      string `yaml:"turnover"`
	TurnoverExVAT string `yaml:"turnover_ex_vat"`
	VATAmount     string `yaml:"vat_amount"`
	TradePrice    string `yaml:"trade_price"`
	RRP           string `yaml:"rrp"`
	Profit        string `yaml:"profit"`
}

// Ruleset configures the check battery for one dataset family.
type Ruleset struct {
	ExpectedColumns    []string         `yaml:"expected_columns"`
	Roles              Roles            `yaml:"roles"`
	NumericColumns     []string         `yaml:"numeric_columns"`
	Ranges             map[string]Range `yaml:"ranges"`
	UniqueColumns      []string         `yaml:"unique_columns"`
	CategoricalColumns []string         `yaml:"categorical_columns"`
	CanonicalSuppliers []string         `yaml:"canonical_suppliers"`
	OutlierColumns     []string         `yaml:"outlier_columns"`
}

// LoadRuleset reads a YAML ruleset from disk.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read ruleset %s: %w", path, err)
	}
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}
	return &rs, nil
}

func f(v float64) *float64 { return &v }

// DefaultRuleset matches the retail sales extract the service was built
// around: one row per till line with product, supplier, and financial fields.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		ExpectedColumns: []string{
			"Unnamed: 0", "Product", "Packsize", "Headoffice ID", "Barcode",
			"OrderList", "Branch Name", "Dept Fullname", "Group Fullname",
			"Trade Price", "RRP", "Sale Date", "Sale ID", "Qty Sold",
			"Turnover", "Vat Amount", "Sale VAT Rate", "Turnover ex VAT",
			"Disc Amount", "Discount Band", "Profit", "Refund Qty", "Refund Value",
		},
		Roles: Roles{
			Product:       "Product",
			Barcode:       "Barcode",
			Supplier:      "OrderList",
			Department:    "Dept Fullname",
			SaleDate:      "Sale Date",
			SaleID:        "Sale ID",
			Quantity:      "Qty Sold",
			Turnover:      "Turnover",
			TurnoverExVAT: "Turnover ex VAT",
			VATAmount:     "Vat Amount",
			TradePrice:    "Trade Price",
			RRP:           "RRP",
			Profit:        "Profit",
		},
		NumericColumns: []string{
			"Headoffice ID", "Barcode", "Trade Price", "RRP", "Sale ID",
			"Qty Sold", "Turnover", "Vat Amount", "Sale VAT Rate",
			"Turnover ex VAT", "Disc Amount", "Profit", "Refund Qty", "Refund Value",
		},
		Ranges: map[string]Range{
			"Qty Sold":        {Min: f(0)},
			"Refund Qty":      {Min: f(0)},
			"Trade Price":     {Min: f(0)},
			"RRP":             {Min: f(0)},
			"Turnover":        {Min: f(0)},
			"Turnover ex VAT": {Min: f(0)},
			"Sale VAT Rate":   {Min: f(0), Max: f(100)},
		},
		UniqueColumns: []string{"Sale ID", "Barcode"},
		CategoricalColumns: []string{
			"OrderList", "Branch Name", "Dept Fullname", "Group Fullname",
		},
		CanonicalSuppliers: []string{"Pharmax"},
		OutlierColumns: []string{
			"Trade Price", "RRP", "Qty Sold", "Turnover", "Profit",
		},
	}
}
