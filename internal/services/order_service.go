package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"
	"github.com/AZIZABADA10/E-commerce/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routing keys for order events published on the orders exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// UnknownProductName is shown for orders whose product no longer exists
// in the catalog.
const UnknownProductName = "Produit inconnu"

var (
	// ErrInsufficientStock is returned when an order asks for more units
	// than the catalog reports in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus is returned for a status outside the lifecycle enum.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidTransition is returned for a move the state machine forbids,
	// including any edit to an order in a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// EventPublisher publishes order events to the message broker. A nil
// publisher disables publication.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderView is an order joined with its product's current catalog data
// for display. The join is recomputed on every listing, never persisted,
// so it tracks catalog price changes.
type OrderView struct {
	models.Order
	ProductName  string  `json:"product_name"`
	UnitPrice    float64 `json:"unit_price"`
	DisplayTotal float64 `json:"display_total"`
}

// OrderService handles business logic related to orders and their
// lifecycle.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
	metrics     *metrics.StoreMetrics
}

// NewOrderService creates a new OrderService. publisher and m may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, m *metrics.StoreMetrics) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		metrics:     m,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder creates a new pending order after checking the product
// exists and has enough stock. When order.TotalAmount is zero it is
// computed from the catalog price at creation time.
func (s *OrderService) CreateOrder(order *models.Order) (*models.Order, error) {
	if order.Quantity < 1 {
		return nil, fmt.Errorf("order quantity must be at least 1, got %d", order.Quantity)
	}

	product, err := s.productRepo.GetByID(order.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", order.ProductID, err)
	}
	if product.StockQuantity > 0 && order.Quantity > product.StockQuantity {
		return nil, fmt.Errorf("product %s (requested: %d, available: %d): %w",
			product.Name, order.Quantity, product.StockQuantity, ErrInsufficientStock)
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = models.StatusPending
	if order.TotalAmount == 0 {
		order.TotalAmount = lineTotal(product.Price, order.Quantity)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.metrics.IncOrdersCreated()
	s.publishEvent(EventOrderCreated, map[string]interface{}{
		"order_id": order.ID,
		"product":  order.ProductID,
		"quantity": order.Quantity,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})
	return order, nil
}

// UpdateOrderQuantity changes the quantity of an order. Orders in a
// terminal state reject the edit. The total amount is recomputed from the
// current catalog price, falling back to the order's recorded unit price
// when the product is gone.
func (s *OrderService) UpdateOrderQuantity(id string, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("order quantity must be at least 1, got %d", quantity)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("order %s is %s: %w", id, order.Status, ErrInvalidTransition)
	}

	unitPrice := s.resolveUnitPrice(order)
	total := lineTotal(unitPrice, quantity)
	if err := s.orderRepo.UpdateQuantity(id, quantity, total); err != nil {
		return nil, err
	}
	order.Quantity = quantity
	order.TotalAmount = total
	return order, nil
}

// UpdateOrderStatus moves an order through its lifecycle. Only the
// transitions pending→processing→completed and non-terminal→cancelled
// are permitted.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("order %s cannot go from %s to %s: %w",
			id, order.Status, status, ErrInvalidTransition)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	s.metrics.IncStatusTransition(string(order.Status), string(status))
	s.publishEvent(EventOrderStatusChanged, map[string]interface{}{
		"order_id": id,
		"from":     order.Status,
		"to":       status,
	})
	order.Status = status
	return order, nil
}

// CancelOrder transitions an order to cancelled. The record is kept as
// history rather than deleted.
func (s *OrderService) CancelOrder(id string) (*models.Order, error) {
	return s.UpdateOrderStatus(id, models.StatusCancelled)
}

// ListOrderViews returns all orders joined with current product names and
// prices. A missing product never fails the listing; the view falls back
// to UnknownProductName and a zero price.
func (s *OrderService) ListOrderViews() ([]OrderView, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, err
	}

	// One catalog snapshot for the whole listing.
	catalog := make(map[string]models.Product)
	products, err := s.productRepo.GetAll()
	if err != nil {
		log.Printf("Order listing: catalog unavailable, using fallbacks: %v", err)
	} else {
		for _, p := range products {
			catalog[p.ID] = p
		}
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{Order: order, ProductName: UnknownProductName}
		if p, ok := catalog[order.ProductID]; ok {
			view.ProductName = p.Name
			view.UnitPrice = p.Price
		}
		view.DisplayTotal = lineTotal(view.UnitPrice, order.Quantity)
		views = append(views, view)
	}
	return views, nil
}

// Summary returns the number of orders per status.
func (s *OrderService) Summary() (map[models.OrderStatus]int, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int, 4)
	for _, order := range orders {
		counts[order.Status]++
	}
	return counts, nil
}

// resolveUnitPrice prefers the live catalog price and falls back to the
// unit price implied by the order's recorded total.
func (s *OrderService) resolveUnitPrice(order *models.Order) float64 {
	if product, err := s.productRepo.GetByID(order.ProductID); err == nil {
		return product.Price
	}
	if order.Quantity > 0 {
		return decimal.NewFromFloat(order.TotalAmount).
			Div(decimal.NewFromInt(int64(order.Quantity))).
			Round(2).InexactFloat64()
	}
	return 0
}

func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

// lineTotal multiplies a unit price by a quantity, rounded to 2 decimals.
func lineTotal(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).InexactFloat64()
}
