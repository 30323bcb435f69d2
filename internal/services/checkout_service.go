package services

import (
	"fmt"
	"log"
	"time"

	"github.com/AZIZABADA10/E-commerce/internal/cart"
	"github.com/AZIZABADA10/E-commerce/internal/checkout"
	"github.com/AZIZABADA10/E-commerce/internal/invoice"
	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/pkg/metrics"
)

// CheckoutService turns a cart into pending orders and an invoice.
//
// Order creation and invoice generation are deliberately decoupled: the
// order records are written first and are the source of truth; the
// invoice is a report of those records. The cart is cleared only once
// the invoice has been rendered, so a failed generation never loses it.
type CheckoutService struct {
	orders    *OrderService
	validator *checkout.Validator
	metrics   *metrics.StoreMetrics
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. m may be nil.
func NewCheckoutService(orders *OrderService, m *metrics.StoreMetrics) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		validator: checkout.NewValidator(),
		metrics:   m,
		now:       time.Now,
	}
}

// Checkout validates the customer, creates one pending order per cart
// line (priced at the cart's captured unit price), renders the invoice
// and clears the cart. On any failure the cart is left untouched.
func (s *CheckoutService) Checkout(store *cart.Store, customer models.CustomerInfo) (*invoice.Invoice, []models.Order, error) {
	if err := s.validator.Validate(customer); err != nil {
		return nil, nil, err
	}

	items := store.Items()
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("cart is empty")
	}

	created := make([]models.Order, 0, len(items))
	for _, item := range items {
		order := &models.Order{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			CustomerInfo: customer,
			TotalAmount:  lineTotal(item.UnitPrice, item.Quantity),
		}
		placed, err := s.orders.CreateOrder(order)
		if err != nil {
			// Earlier orders of this checkout stand; the cart is kept so
			// the customer can retry.
			return nil, created, fmt.Errorf("failed to place order for product %s: %w", item.ProductID, err)
		}
		created = append(created, *placed)
	}

	doc, err := invoice.Generate(items, customer, s.now())
	if err != nil {
		return nil, created, fmt.Errorf("invoice generation failed: %w", err)
	}
	s.metrics.IncInvoicesGenerated()

	if err := store.Clear(); err != nil {
		// The invoice and orders exist; a stale snapshot is the lesser evil.
		log.Printf("Warning: failed to clear cart after checkout: %v", err)
	}

	return doc, created, nil
}
