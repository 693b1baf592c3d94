package checkout

// CartItem is one product line held in the client-side cart. Prices are in
// minor currency units.
type CartItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	ImageRef        string  `json:"image_ref"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Cart owns the items a user has picked before checkout. Lines with zero
// quantity stay out of totals and out of the order draft.
type Cart struct {
	items []CartItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add appends a new line or bumps the quantity of an existing one.
func (c *Cart) Add(item CartItem) {
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// SetQuantity updates a line's quantity. Zero keeps the line but excludes it
// from totals; negative values are clamped to zero.
func (c *Cart) SetQuantity(id string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Remove drops a line entirely.
func (c *Cart) Remove(id string) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items returns a copy of all lines, including zero-quantity ones.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// ActiveItems returns only the lines that count toward totals and the draft.
func (c *Cart) ActiveItems() []CartItem {
	out := make([]CartItem, 0, len(c.items))
	for _, item := range c.items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}
