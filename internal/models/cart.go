package models

// DefaultStockLimit caps cart quantities for products that do not report
// a stock figure.
const DefaultStockLimit = 100

// CartItem represents a single product line in a cart, keyed by ProductID.
// Quantity is always within [1, StockLimit]; a line whose quantity would
// drop to zero is removed from the cart instead.
type CartItem struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"` // Price at the time the item was added
	Quantity   int     `json:"quantity"`
	StockLimit int     `json:"stock_limit"`
}

// NewCartItem builds a cart line from a catalog product. Products without
// a positive stock quantity fall back to DefaultStockLimit.
func NewCartItem(p *Product, quantity int) CartItem {
	limit := p.StockQuantity
	if limit <= 0 {
		limit = DefaultStockLimit
	}
	if quantity > limit {
		quantity = limit
	}
	if quantity < 1 {
		quantity = 1
	}
	return CartItem{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.Price,
		Quantity:   quantity,
		StockLimit: limit,
	}
}
