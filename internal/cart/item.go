package cart

// LineItem is one (product, variant) entry in the cart. ID is derived from
// the pair and is unique within a cart.
type LineItem struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductSlug  string `json:"product_slug"`
	ProductImage string `json:"product_image,omitempty"`
	VariantID    string `json:"variant_id"`
	VariantName  string `json:"variant_name"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
}

// LineTotal is price times quantity.
func (l LineItem) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}

// AddInput describes an item to add; the engine derives the ID.
type AddInput struct {
	ProductID    string `json:"product_id" binding:"required"`
	ProductName  string `json:"product_name"`
	ProductSlug  string `json:"product_slug"`
	ProductImage string `json:"product_image,omitempty"`
	VariantID    string `json:"variant_id" binding:"required"`
	VariantName  string `json:"variant_name"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
}

// Key is the composite line identity.
func Key(productID, variantID string) string {
	return productID + "-" + variantID
}
