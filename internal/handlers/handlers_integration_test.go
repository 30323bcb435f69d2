package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/AZIZABADA10/E-commerce/internal/handlers"
	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"
	"github.com/AZIZABADA10/E-commerce/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over in-memory SQLite and an in-memory cart
// snapshot store, with all storefront handlers registered.
func setupApp(t *testing.T) (*fiber.App, *repositories.GORMProductRepository) {
	t.Helper()

	// A named in-memory database per test keeps the connection pool on
	// one database without sharing state across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	snapshots := repositories.NewMockCartSnapshotRepository()

	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil, nil)
	checkoutService := services.NewCheckoutService(orderService, nil)

	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(snapshots, productService, checkoutService, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)

	seedProductsForTest(t, productRepo)
	return app, productRepo
}

// seedProductsForTest populates the product catalog for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{ID: "prod-1", Name: "Test Laptop", Description: "For testing purposes", Category: "Informatique", Price: 1000.00, StockQuantity: 5},
		{ID: "prod-2", Name: "Test Monitor", Description: "Another test item", Category: "Informatique", Price: 200.00, StockQuantity: 10},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cartID string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cartID != "" {
		req.Header.Set("X-Cart-ID", cartID)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestGetProducts(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	decode(t, resp, &products)
	assert.Len(t, products, 2)
}

func TestCartFlow(t *testing.T) {
	app, _ := setupApp(t)
	const cartID = "itest-cart"

	// Empty cart to start.
	resp := doJSON(t, app, http.MethodGet, "/api/v1/cart/", nil, cartID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Items     []models.CartItem `json:"items"`
		Total     float64           `json:"total"`
		ItemCount int               `json:"item_count"`
	}
	decode(t, resp, &view)
	assert.Empty(t, view.Items)

	// Add a laptop twice.
	addBody := map[string]interface{}{"product_id": "prod-1", "quantity": 1}
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", addBody, cartID)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", addBody, cartID)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2000.0, view.Total)
	assert.Equal(t, 2, view.ItemCount)

	// Update the quantity, clamped to the product's stock of 5.
	resp = doJSON(t, app, http.MethodPut, "/api/v1/cart/items/prod-1", map[string]int{"quantity": 9}, cartID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	assert.Equal(t, 5, view.Items[0].Quantity)

	// Remove the line, then clear the (already empty) cart.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/items/prod-1", nil, cartID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	assert.Empty(t, view.Items)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/", nil, cartID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestCartSessionsAreIsolated(t *testing.T) {
	app, _ := setupApp(t)

	addBody := map[string]interface{}{"product_id": "prod-1", "quantity": 1}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", addBody, "cart-a")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var view struct {
		Items []models.CartItem `json:"items"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/", nil, "cart-b")
	decode(t, resp, &view)
	assert.Empty(t, view.Items, "another session must not see this cart")
}

func TestAddToCartRejectsWhenAtStockLimit(t *testing.T) {
	app, _ := setupApp(t)
	const cartID = "stock-cart"

	addBody := map[string]interface{}{"product_id": "prod-1", "quantity": 5}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", addBody, cartID)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "prod-1", "quantity": 1}, cartID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func validCustomerBody() map[string]string {
	return map[string]string{
		"nom":       "Alaoui",
		"prenom":    "Yassine",
		"telephone": "0612345678",
		"email":     "yassine@example.com",
		"adresse":   "12 rue des Orangers",
		"ville":     "Casablanca",
	}
}

func TestCheckoutReturnsInvoiceAndCreatesOrders(t *testing.T) {
	app, _ := setupApp(t)
	const cartID = "checkout-cart"

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "prod-1", "quantity": 2}, cartID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "prod-2", "quantity": 1}, cartID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/checkout", validCustomerBody(), cartID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "commande-")
	assert.NotEmpty(t, resp.Header.Get("X-Invoice-Number"))

	pdf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	// Cart is single-use: cleared by the successful checkout.
	var view struct {
		Items []models.CartItem `json:"items"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/", nil, cartID)
	decode(t, resp, &view)
	assert.Empty(t, view.Items)

	// One pending order per cart line.
	var orders []services.OrderView
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/", nil, "")
	decode(t, resp, &orders)
	require.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, models.StatusPending, order.Status)
		assert.NotEqual(t, services.UnknownProductName, order.ProductName)
	}
}

func TestCheckoutRejectsInvalidCustomer(t *testing.T) {
	app, _ := setupApp(t)
	const cartID = "invalid-customer-cart"

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"product_id": "prod-2", "quantity": 1}, cartID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	body := validCustomerBody()
	body["telephone"] = "12345"
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/checkout", body, cartID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Field string `json:"field"`
	}
	decode(t, resp, &errBody)
	assert.Equal(t, "telephone", errBody.Field)

	// The cart survives a failed checkout.
	var view struct {
		Items []models.CartItem `json:"items"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/", nil, cartID)
	decode(t, resp, &view)
	assert.Len(t, view.Items, 1)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app, _ := setupApp(t)

	// Create an order directly.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{"product_id": "prod-2", "quantity": 2}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 400.0, order.TotalAmount)

	// pending -> processing -> completed.
	for _, status := range []models.OrderStatus{models.StatusProcessing, models.StatusCompleted} {
		resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%s/status", order.ID), map[string]models.OrderStatus{"status": status}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &order)
		assert.Equal(t, status, order.Status)
	}

	// Completed is terminal: no quantity edits, no cancellation.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+order.ID, map[string]int{"quantity": 5}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+order.ID, nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestCancelOrderKeepsRecord(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{"product_id": "prod-1", "quantity": 1}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)

	// DELETE cancels but keeps the record.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+order.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &order)
	assert.Equal(t, models.StatusCancelled, order.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &order)
	assert.Equal(t, models.StatusCancelled, order.Status)
}

func TestOrderQuantityUpdateRecomputesTotal(t *testing.T) {
	app, productRepo := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{"product_id": "prod-2", "quantity": 1}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, 200.0, order.TotalAmount)

	// The catalog price changes, then the quantity is edited: the new
	// total uses the current price.
	product, err := productRepo.GetByID("prod-2")
	require.NoError(t, err)
	product.Price = 250
	require.NoError(t, productRepo.Update(product))

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+order.ID, map[string]int{"quantity": 3}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &order)
	assert.Equal(t, 3, order.Quantity)
	assert.Equal(t, 750.0, order.TotalAmount)
}

func TestOrderSummary(t *testing.T) {
	app, _ := setupApp(t)

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{"product_id": "prod-1", "quantity": 1}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var orders []services.OrderView
	resp := doJSON(t, app, http.MethodGet, "/api/v1/orders/", nil, "")
	decode(t, resp, &orders)
	require.Len(t, orders, 3)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+orders[0].ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var summary map[models.OrderStatus]int
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/summary", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &summary)
	assert.Equal(t, 2, summary[models.StatusPending])
	assert.Equal(t, 1, summary[models.StatusCancelled])
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{"product_id": "prod-1", "quantity": 1}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%s/status", order.ID), map[string]string{"status": "shipped"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
