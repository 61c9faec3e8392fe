package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bichritech/internal/config"
	"bichritech/internal/handlers"
	"bichritech/internal/middleware"
	"bichritech/internal/models"
	"bichritech/internal/payments"
	"bichritech/internal/repositories"
	"bichritech/internal/services"
	"bichritech/internal/sms"
	"bichritech/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Order events are best-effort; if the broker is unreachable the
	// service runs without it rather than refusing to start.
	var mqClient *rabbitmq.Client
	mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		mqClient = nil
	} else {
		defer mqClient.Close()
	}
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}

	// --- Providers ---
	// Payment gateways and SMS providers are resolved once here; any
	// provider without credentials runs in simulation mode from now on.
	processor := payments.NewProcessor(cfg)
	dispatcher := sms.NewDispatcher(cfg)

	// --- Repositories ---
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	paymentService := services.NewPaymentService(orderRepo, processor)
	orderService := services.NewOrderService(orderRepo, paymentService, dispatcher, publisher)
	webhookService := services.NewWebhookService(orderRepo, dispatcher, publisher)

	// --- Handlers ---
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	smsHandler := handlers.NewSMSHandler(dispatcher)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.OptionalIdentity(cfg.JWTSecret))

	apiV1 := app.Group("/api/v1")
	orderHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	webhookHandler.RegisterRoutes(apiV1)
	smsHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting order events consumer...")
			consumerErr := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if consumerErr != nil {
				log.Printf("Failed to start order events consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
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

// openDatabase connects to PostgreSQL when a DSN is configured and falls
// back to a local SQLite file for development. TranslateError is needed
// so order number collisions surface as gorm.ErrDuplicatedKey.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.DatabaseDSN != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	}
	log.Println("DATABASE_DSN not set, using local SQLite database")
	return gorm.Open(sqlite.Open("bichritech.db"), gormCfg)
}
