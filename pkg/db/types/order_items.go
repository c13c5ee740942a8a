package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderLine is one snapshot line inside an order's items column. Name, unit
// and price are frozen at the moment the product was added to the cart.
type OrderLine struct {
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// Subtotal returns price multiplied by quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// OrderItems maps a product id to its snapshot line, stored as a JSON column:
// {"<productId>": {"name","unit","price","qty"}, ...}.
type OrderItems map[string]OrderLine

func (i *OrderItems) Scan(src any) error {
	if src == nil {
		*i = OrderItems{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return i.parseFromBytes([]byte(v))
	case []byte:
		return i.parseFromBytes(v)
	default:
		return fmt.Errorf("OrderItems: unsupported Scan type %T", src)
	}
}

func (i OrderItems) Value() (driver.Value, error) {
	if len(i) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("OrderItems: marshal: %w", err)
	}
	return string(raw), nil
}

// Total sums the subtotals of every line.
func (i OrderItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range i {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (i *OrderItems) parseFromBytes(raw []byte) error {
	if len(raw) == 0 {
		*i = OrderItems{}
		return nil
	}
	out := OrderItems{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("OrderItems: parse: %w", err)
	}
	*i = out
	return nil
}
