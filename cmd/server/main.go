package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mariosyian/marketplace/internal/archive"
	"github.com/Mariosyian/marketplace/internal/catalog"
	"github.com/Mariosyian/marketplace/internal/checkout"
	"github.com/Mariosyian/marketplace/internal/config"
	"github.com/Mariosyian/marketplace/internal/domain"
	"github.com/Mariosyian/marketplace/internal/events"
	"github.com/Mariosyian/marketplace/internal/metrics"
	"github.com/Mariosyian/marketplace/internal/paypal"
	"github.com/Mariosyian/marketplace/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Catalog store. A configured but unreachable Mongo catalog is fatal:
	// better to exit than serve with a half-initialized catalog.
	var store catalog.Store
	if cfg.MongoURL != "" {
		mongoDB, err := catalog.ConnectMongoDB(ctx, cfg.MongoURL, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer mongoDB.Client().Disconnect(ctx)
		store = catalog.NewMongoStore(mongoDB)
		log.Println("Successfully connected to database!")
	} else {
		store = catalog.NewMemoryStore(defaultCatalog())
		log.Println("No MONGO_DB_URL configured; using the seeded in-memory catalog")
	}

	// Optional Redis read-through cache for item lookups.
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis ping failed, continuing without item cache: %v", err)
		} else {
			store = catalog.NewCachedStore(store, catalog.NewRedisCache(redisClient))
			log.Printf("Item cache enabled via Redis at %s", cfg.RedisAddr)
		}
	}

	// Optional Postgres invoice archive.
	var archiver *archive.Repository
	if cfg.PostgresDSN != "" {
		archiver, err = archive.NewRepository(cfg.PostgresDSN)
		if err != nil {
			log.Printf("Invoice archive unavailable, continuing without it: %v", err)
			archiver = nil
		} else {
			defer archiver.Close()
			if err := archiver.RunMigrations(cfg.MigrationsPath); err != nil {
				log.Fatalf("Failed to run archive migrations: %v", err)
			}
			log.Println("Invoice archive migrations completed")
		}
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	if publisher.Enabled() {
		log.Printf("Purchase events enabled via Kafka at %v", cfg.KafkaBrokers)
	}

	// Provider token lifecycle runs independently of request handling and
	// is cancelled on shutdown.
	httpClient := paypal.NewHTTPClient()
	tokens := paypal.NewTokenSource(cfg.PayPalBaseURL, cfg.PayPalClientID(), cfg.PayPalSecret(), httpClient)
	tokenCtx, cancelTokens := context.WithCancel(ctx)
	defer cancelTokens()
	go tokens.Run(tokenCtx)

	payments := paypal.NewClient(cfg.PayPalBaseURL, tokens, httpClient)

	opts := web.Options{
		Store:         store,
		Payments:      payments,
		Publisher:     publisher,
		Metrics:       metrics.NewServerMetrics("web"),
		Customer:      defaultCustomer(),
		ShippingPrice: cfg.ShippingPrice,
		OrderConfig: checkout.BuildConfig{
			BrandName:  cfg.BrandName,
			PayeeEmail: cfg.PayeeEmail,
			ReturnURL:  cfg.PublicBaseURL + "/success",
			CancelURL:  cfg.PublicBaseURL + "/cart",
		},
		Timeout: cfg.RequestTimeout,
	}
	if archiver != nil {
		opts.Archiver = archiver
	}
	server := web.NewServer(opts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancelTokens()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// defaultCustomer is the fixed profile attached to every order.
func defaultCustomer() domain.Customer {
	return domain.Customer{
		FirstName:  "John",
		LastName:   "Smith",
		Address1:   "Room X, Flat Y",
		Address2:   "99 Smith Street",
		PostalCode: "X99 9XX",
		Email:      "john@smith.com",
		Telephone:  "+441234567890",
	}
}

// defaultCatalog seeds the in-memory store for local development.
func defaultCatalog() []*domain.Item {
	return []*domain.Item{
		{ID: "1", Name: "Mechanical Keyboard", Description: "Tenkeyless board with hot-swappable switches.", Price: 420, Quantity: 1},
		{ID: "2", Name: "Wireless Mouse", Description: "Low-latency wireless mouse with adjustable DPI.", Price: 130, Quantity: 0},
		{ID: "3", Name: "USB-C Dock", Description: "Dual-display dock with 100W passthrough charging.", Price: 89.99, Quantity: 12},
		{ID: "4", Name: "Desk Mat", Description: "900x400mm stitched-edge desk mat.", Price: 19.5, Quantity: 30},
	}
}
