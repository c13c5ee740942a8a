package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
)

// Cart groups snapshot lines by seller, then by product:
// {"<sellerId>": {"<productId>": {"name","unit","price","qty"}}}.
// The same shape is stored in Redis and snapshotted into order requests.
type Cart map[string]dbtypes.OrderItems

// Line returns the line for the product, looking across all sellers.
func (c Cart) Line(productID string) (string, dbtypes.OrderLine, bool) {
	for sellerID, items := range c {
		if line, ok := items[productID]; ok {
			return sellerID, line, true
		}
	}
	return "", dbtypes.OrderLine{}, false
}

// RemoveLine deletes the product line and prunes the seller group when empty.
func (c Cart) RemoveLine(productID string) bool {
	for sellerID, items := range c {
		if _, ok := items[productID]; ok {
			delete(items, productID)
			if len(items) == 0 {
				delete(c, sellerID)
			}
			return true
		}
	}
	return false
}

// CartItemDTO is one rendered cart line.
type CartItemDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SellerGroupDTO is the per-farmer section of the cart.
type SellerGroupDTO struct {
	SellerID string          `json:"seller_id"`
	Items    []CartItemDTO   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartDTO is the rendered cart, with stable ordering for the UI.
type CartDTO struct {
	Sellers   []SellerGroupDTO `json:"sellers"`
	Total     decimal.Decimal  `json:"total"`
	ItemCount int              `json:"item_count"`
}

// Render flattens the cart into its transport shape, sorted by seller and
// product id so repeated reads produce identical output.
func (c Cart) Render() *CartDTO {
	dto := &CartDTO{
		Sellers: make([]SellerGroupDTO, 0, len(c)),
		Total:   decimal.Zero,
	}

	sellerIDs := make([]string, 0, len(c))
	for sellerID := range c {
		sellerIDs = append(sellerIDs, sellerID)
	}
	sort.Strings(sellerIDs)

	for _, sellerID := range sellerIDs {
		items := c[sellerID]
		group := SellerGroupDTO{
			SellerID: sellerID,
			Items:    make([]CartItemDTO, 0, len(items)),
			Subtotal: decimal.Zero,
		}

		productIDs := make([]string, 0, len(items))
		for productID := range items {
			productIDs = append(productIDs, productID)
		}
		sort.Strings(productIDs)

		for _, productID := range productIDs {
			line := items[productID]
			subtotal := line.Subtotal()
			group.Items = append(group.Items, CartItemDTO{
				ProductID: productID,
				Name:      line.Name,
				Unit:      line.Unit,
				Price:     line.Price,
				Qty:       line.Qty,
				Subtotal:  subtotal,
			})
			group.Subtotal = group.Subtotal.Add(subtotal)
			dto.ItemCount += line.Qty
		}

		dto.Total = dto.Total.Add(group.Subtotal)
		dto.Sellers = append(dto.Sellers, group)
	}

	return dto
}
