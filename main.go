package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lapak/internal/handlers"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/internal/storage"
	"lapak/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "lapak.db")
	viper.SetDefault("JWT_SECRET", "dev_secret_change_me")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")

	// --- Initialize RabbitMQ Client (optional) ---
	// An empty RABBITMQ_URL disables listing event publishing entirely; the
	// services tolerate a nil client.
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		mqClient = client
		defer mqClient.Close() // Ensure the connection is closed on exit
	}

	// --- Initialize Repositories ---
	productRepo, userRepo, err := buildRepositories()
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// --- Initialize Media Store ---
	mediaStore, err := storage.NewDiskStore(viper.GetString("UPLOAD_DIR"), viper.GetString("BASE_URL"))
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// --- Initialize Services ---
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, userService, mqClient)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(userService)
	uploadHandler := handlers.NewUploadHandler(mediaStore)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		// Room for a full upload batch (5 files at 5 MiB); the media store
		// enforces the per-file and per-call limits itself.
		BodyLimit: 32 * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	authRequired := middleware.IdentityRequired([]byte(jwtSecret))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1, authRequired)
	authHandler.RegisterRoutes(apiV1, authRequired)
	uploadHandler.RegisterRoutes(apiV1, authRequired)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Downstream processing of listing events (search indexing, notifications)
	// lives in other services; this consumer just logs what flows through.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for listing events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received listing event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeListingEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// buildRepositories selects the backing store from configuration: postgres in
// production, sqlite for local work, or the in-memory repositories for a
// database-free dev run.
func buildRepositories() (repositories.ProductRepository, repositories.UserRepository, error) {
	driver := viper.GetString("DB_DRIVER")
	dsn := viper.GetString("DB_DSN")

	var dialector gorm.Dialector
	switch driver {
	case "memory":
		log.Println("Using in-memory repositories (no database)")
		return repositories.NewMockProductRepository(), repositories.NewMockUserRepository(), nil
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), nil
}
