package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AZIZABADA10/E-commerce/internal/config"
	"github.com/AZIZABADA10/E-commerce/internal/handlers"
	"github.com/AZIZABADA10/E-commerce/internal/models"
	"github.com/AZIZABADA10/E-commerce/internal/repositories"
	"github.com/AZIZABADA10/E-commerce/internal/services"
	"github.com/AZIZABADA10/E-commerce/pkg/metrics"
	"github.com/AZIZABADA10/E-commerce/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	// Postgres when a DSN is configured, a local SQLite file otherwise.
	var dialector gorm.Dialector
	if cfg.PostgresDSN != "" {
		dialector = postgres.Open(cfg.PostgresDSN)
	} else {
		dialector = sqlite.Open(cfg.SQLitePath)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Cart snapshot store ---
	// Redis when configured; otherwise carts live in process memory.
	var snapshots repositories.CartSnapshotRepository
	if cfg.RedisAddr != "" {
		redisRepo := repositories.NewRedisCartSnapshotRepository(cfg.RedisAddr)
		defer redisRepo.Close()
		snapshots = redisRepo
	} else {
		log.Println("REDIS_ADDR not set, keeping cart snapshots in memory")
		snapshots = repositories.NewMockCartSnapshotRepository()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, order event publishing disabled")
	}

	// --- Metrics ---
	storeMetrics := metrics.NewStoreMetrics(prometheus.DefaultRegisterer)
	go func() {
		log.Printf("Metrics listening on %s", cfg.MetricsPort)
		if err := http.ListenAndServe(cfg.MetricsPort, metrics.Handler()); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	seedProducts(productRepo)

	// --- Services ---
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, publisher, storeMetrics)
	checkoutService := services.NewCheckoutService(orderService, storeMetrics)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(snapshots, productService, checkoutService, storeMetrics)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(logger.New()) // Request logger

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event %s: %s", msg.RoutingKey, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedProducts populates an empty catalog with some initial data.
func seedProducts(repo repositories.ProductRepository) {
	existing, err := repo.GetAll()
	if err != nil || len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Category: "Informatique", Price: 1200.00, StockQuantity: 10},
		{Name: "Keyboard", Description: "Mechanical keyboard", Category: "Accessoires", Price: 75.00, StockQuantity: 25},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Category: "Accessoires", Price: 25.00, StockQuantity: 50},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
