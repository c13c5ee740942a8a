package enums

import "fmt"

// ProductUnit is the unit of measure a product is sold in.
type ProductUnit string

const (
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitPiece ProductUnit = "pz"
	ProductUnitCrate ProductUnit = "cassetta"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitPiece,
	ProductUnitCrate,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
