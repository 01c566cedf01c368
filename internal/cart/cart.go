package cart

import "errors"

var (
	ErrStockEmpty        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLineNotFound      = errors.New("cart line not found")
)

type Product struct {
	ID    string
	Name  string
	Price int64
	Stock int
}

type Variant struct {
	ID              string
	Name            string
	AdditionalPrice int64
}

// Line is one cart entry. Uniqueness key = (ProductID, VariantID);
// VariantID is empty when the product has no variant selected.
type Line struct {
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id,omitempty"`
	Name         string `json:"name"`
	VariantName  string `json:"variant_name,omitempty"`
	UnitPrice    int64  `json:"unit_price"`
	VariantPrice int64  `json:"variant_price"`
	Quantity     int    `json:"quantity"`
	Stock        int    `json:"stock"`
}

// Price is the line amount: (unit + variant) * qty.
func (l Line) Price() int64 {
	return (l.UnitPrice + l.VariantPrice) * int64(l.Quantity)
}

// Cart accumulates line items for one open checkout session.
// It is a plain in-memory value; the session owning it serializes access.
type Cart struct {
	lines []Line
}

func New() *Cart { return &Cart{} }

// Add appends a quantity-1 line for (product, variant), or increments the
// matching line. Stock is checked optimistically against the snapshot the
// caller supplied; the backend re-validates on order creation.
func (c *Cart) Add(p Product, v *Variant) error {
	if p.Stock <= 0 {
		return ErrStockEmpty
	}
	variantID := ""
	variantName := ""
	var variantPrice int64
	if v != nil {
		variantID = v.ID
		variantName = v.Name
		variantPrice = v.AdditionalPrice
	}
	if i := c.find(p.ID, variantID); i >= 0 {
		if c.lines[i].Quantity+1 > p.Stock {
			return ErrInsufficientStock
		}
		c.lines[i].Quantity++
		c.lines[i].Stock = p.Stock
		return nil
	}
	c.lines = append(c.lines, Line{
		ProductID:    p.ID,
		VariantID:    variantID,
		Name:         p.Name,
		VariantName:  variantName,
		UnitPrice:    p.Price,
		VariantPrice: variantPrice,
		Quantity:     1,
		Stock:        p.Stock,
	})
	return nil
}

// UpdateQuantity applies delta to the matching line. The result is clamped
// to a minimum of 1; increases past the known stock are rejected and leave
// the line unchanged.
func (c *Cart) UpdateQuantity(productID, variantID string, delta int) error {
	i := c.find(productID, variantID)
	if i < 0 {
		return ErrLineNotFound
	}
	next := c.lines[i].Quantity + delta
	if next < 1 {
		next = 1
	}
	if next > c.lines[i].Stock {
		return ErrInsufficientStock
	}
	c.lines[i].Quantity = next
	return nil
}

// Remove deletes the matching line unconditionally.
func (c *Cart) Remove(productID, variantID string) {
	i := c.find(productID, variantID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Total recomputes the cart sum on every call. It is the optimistic,
// client-side figure; once an order exists the backend totals win.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Price()
	}
	return total
}

func (c *Cart) Items() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) find(productID, variantID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}
