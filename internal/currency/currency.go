// Package currency maps 3-letter currency codes to their minor-unit scale
// (number of decimal places) and converts between minor-unit integers and
// decimal strings. Scale is what keeps amounts exact: a record stores minor
// units, the text formats show decimals.
package currency

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultScale is used for currencies not listed in a table.
const DefaultScale = 2

// Table maps currency codes to minor-unit scales.
type Table struct {
	Scales map[string]int `yaml:"scales"`
}

// Default returns the built-in scale table covering the common non-2-scale
// ISO 4217 currencies.
func Default() *Table {
	return &Table{
		Scales: map[string]int{
			"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0,
			"JPY": 0, "KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0,
			"UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
			"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
		},
	}
}

// Load reads a scale override table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading currency table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing currency table: %w", err)
	}
	return &t, nil
}

// Scale returns the minor-unit scale for a currency code.
func (t *Table) Scale(code string) int {
	if t != nil {
		if s, ok := t.Scales[strings.ToUpper(code)]; ok {
			return s
		}
	}
	return DefaultScale
}

// FormatAmount renders a minor-unit count as a decimal string at the given
// scale, e.g. (12345, 2) -> "123.45".
func FormatAmount(minor int64, scale int) string {
	return decimal.New(minor, -int32(scale)).StringFixed(int32(scale))
}

// ParseAmount parses a decimal string into a minor-unit count. The value may
// use fewer decimal places than the scale but never more; "123.4" at scale 2
// is 12340, "1.234" at scale 2 is an error.
func ParseAmount(s string, scale int) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	shifted := d.Shift(int32(scale))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, scale)
	}
	big := shifted.BigInt()
	if !big.IsInt64() {
		return 0, fmt.Errorf("amount %q overflows the minor-unit range", s)
	}
	return big.Int64(), nil
}
