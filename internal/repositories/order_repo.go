package repositories

import (
	"github.com/AZIZABADA10/E-commerce/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are never deleted; cancellation is a status transition so the
// record stays around as history.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateQuantity(id string, quantity int, totalAmount float64) error
	UpdateStatus(id string, status models.OrderStatus) error
}
