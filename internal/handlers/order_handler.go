package handlers

import (
	"errors"
	"log"

	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"
	"github.com/AZIZABADA10/E-commerce/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/summary", h.HandleGetSummary)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id", h.HandleUpdateOrderQuantity)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	// DELETE cancels: the record is transitioned to cancelled and kept.
	orderRoutes.Delete("/:id", h.HandleCancelOrder)
}

// HandleGetOrders retrieves all orders joined with current product data.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrderViews()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetSummary returns the number of orders per status.
func (h *OrderHandler) HandleGetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary()
	if err != nil {
		log.Printf("Error getting order summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order summary",
			"error":   err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new pending order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var orderRequest models.Order
	if err := c.BodyParser(&orderRequest); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if orderRequest.ProductID == "" || orderRequest.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A product ID and a quantity of at least 1 are required.",
		})
	}

	createdOrder, err := h.service.CreateOrder(&orderRequest)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		if errors.Is(err, services.ErrInsufficientStock) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order creation failed due to insufficient stock.",
				"error":   err.Error(),
			})
		}
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create order",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderQuantity changes the quantity of a non-terminal order.
func (h *OrderHandler) HandleUpdateOrderQuantity(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for quantity update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for quantity update",
			"error":   err.Error(),
		})
	}
	if updateData.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity must be at least 1.",
		})
	}

	order, err := h.service.UpdateOrderQuantity(orderID, updateData.Quantity)
	if err != nil {
		log.Printf("Error updating quantity for order %s: %v", orderID, err)
		return h.mapLifecycleError(c, err, "Could not update order quantity")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus moves an order through its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateOrderStatus(orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating status for order %s: %v", orderID, err)
		return h.mapLifecycleError(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order by transitioning it to cancelled.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.CancelOrder(orderID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return h.mapLifecycleError(c, err, "Could not cancel order")
	}
	return c.JSON(order)
}

// mapLifecycleError translates service errors to HTTP statuses: unknown
// orders are 404, forbidden transitions and bad statuses are 409/400,
// everything else is a 500.
func (h *OrderHandler) mapLifecycleError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, repositories.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}
