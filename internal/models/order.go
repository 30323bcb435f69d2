package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// validNext maps each status to the set of statuses it may transition to.
// completed and cancelled are terminal.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order represents a customer order for a single product.
type Order struct {
	ID           string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID    string       `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity     int          `json:"quantity" validate:"required,gte=1"`
	Status       OrderStatus  `json:"status" gorm:"type:varchar(20)"`
	CustomerInfo CustomerInfo `json:"customer_info" gorm:"embedded;embeddedPrefix:customer_"`
	TotalAmount  float64      `json:"total_amount"` // Amount at the time of order
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
