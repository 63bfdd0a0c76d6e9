package cart

import "shopverse/internal/domain"

// Line pairs one product with a positive quantity. The full product is
// carried by value so the cart can be rendered and totalled without
// another catalog lookup, mirroring the persisted {product, quantity}
// shape.
type Line struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Cart is an ordered sequence of lines. New products append; quantity
// updates keep their position. At most one line exists per product ID
// and every quantity is >= 1.
type Cart []Line

// Total sums price times quantity over all lines. Pure; safe to call on
// every render.
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// Clone returns a copy the caller may hold without racing the store.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
