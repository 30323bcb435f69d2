package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/AZIZABADA10/E-commerce/internal/cart"
	"github.com/AZIZABADA10/E-commerce/internal/checkout"
	"github.com/AZIZABADA10/E-commerce/internal/middleware"
	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"
	"github.com/AZIZABADA10/E-commerce/internal/services"
	"github.com/AZIZABADA10/E-commerce/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart and checkout.
// Each request works on a fresh cart.Store bound to the session's cart ID.
type CartHandler struct {
	snapshots repositories.CartSnapshotRepository
	products  *services.ProductService
	checkout  *services.CheckoutService
	metrics   *metrics.StoreMetrics
}

// NewCartHandler creates a new CartHandler. m may be nil.
func NewCartHandler(snapshots repositories.CartSnapshotRepository, products *services.ProductService, checkoutSvc *services.CheckoutService, m *metrics.StoreMetrics) *CartHandler {
	return &CartHandler{
		snapshots: snapshots,
		products:  products,
		checkout:  checkoutSvc,
		metrics:   m,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.CartSession())
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// store opens the session's cart, loading its persisted snapshot.
func (h *CartHandler) store(c *fiber.Ctx) *cart.Store {
	return cart.NewStore(h.snapshots, middleware.CartID(c))
}

// cartResponse is the JSON view of a cart.
func cartResponse(s *cart.Store) fiber.Map {
	return fiber.Map{
		"items":      s.Items(),
		"total":      s.Total(),
		"item_count": s.ItemCount(),
	}
}

// HandleGetCart returns the cart's items, total and item count.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(cartResponse(h.store(c)))
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A product ID is required.",
		})
	}

	product, err := h.products.GetProductByID(req.ProductID)
	if err != nil {
		log.Printf("Error resolving product %s for cart: %v", req.ProductID, err)
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve product",
			"error":   err.Error(),
		})
	}

	store := h.store(c)
	if err := store.AddItem(product, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInsufficientStock) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Insufficient stock for this product.",
				"error":   err.Error(),
			})
		}
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	h.metrics.IncCartOperation("add")
	return c.Status(fiber.StatusCreated).JSON(cartResponse(store))
}

// HandleUpdateQuantity sets a line item's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart quantity body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	store := h.store(c)
	if err := store.UpdateQuantity(c.Params("productId"), req.Quantity); err != nil {
		log.Printf("Error updating cart quantity: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart",
			"error":   err.Error(),
		})
	}
	h.metrics.IncCartOperation("update")
	return c.JSON(cartResponse(store))
}

// HandleRemoveItem removes a line item; removing an absent one is fine.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	store := h.store(c)
	if err := store.RemoveItem(c.Params("productId")); err != nil {
		log.Printf("Error removing cart item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove item from cart",
			"error":   err.Error(),
		})
	}
	h.metrics.IncCartOperation("remove")
	return c.JSON(cartResponse(store))
}

// HandleClearCart empties the cart and drops its snapshot.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	store := h.store(c)
	if err := store.Clear(); err != nil {
		log.Printf("Error clearing cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	h.metrics.IncCartOperation("clear")
	return c.JSON(cartResponse(store))
}

// HandleCheckout validates the customer details, places the orders and
// returns the invoice PDF as a download.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var customer models.CustomerInfo
	if err := c.BodyParser(&customer); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	store := h.store(c)
	doc, orders, err := h.checkout.Checkout(store, customer)
	if err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid customer information",
				"field":   vErr.Field,
				"error":   vErr.Error(),
			})
		}
		log.Printf("Checkout failed (orders placed so far: %d): %v", len(orders), err)
		if errors.Is(err, services.ErrInsufficientStock) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Checkout failed due to insufficient stock.",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Checkout failed",
			"error":   err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Set("X-Invoice-Number", doc.Number)
	return c.Send(doc.Data)
}
