package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sarmatovd/shop-services/pkg/config"
	"github.com/sarmatovd/shop-services/pkg/db"
	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
	"github.com/sarmatovd/shop-services/services/product/internal/service"
	productHttp "github.com/sarmatovd/shop-services/services/product/internal/transport/http"
	productRabbit "github.com/sarmatovd/shop-services/services/product/internal/transport/rabbitmq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using system envs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "product-service")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	if migrationsPath := os.Getenv("MIGRATIONS_PATH"); migrationsPath != "" {
		if err := db.RunMigrations(migrationsPath, cfg.Postgres.URL); err != nil {
			log.Fatalf("error running migrations: %v", err)
		}
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	loggerCfg := config.LoggerConfig{
		Level: "info",
		Env:   cfg.Env,
	}

	logger, err := config.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Fatalf("error syncing logger: %v", err)
		}
	}()

	logger.Info("product service started!")

	rabbitClient, err := rabbitmq.Connect(cfg.Rabbit.URL, logger)
	if err != nil {
		log.Fatalf("error connecting to rabbitmq: %v", err)
	}

	if err := rabbitClient.DeclareQueue(domain.PurchaseRequestQueue); err != nil {
		log.Fatalf("error declaring queue %s: %v", domain.PurchaseRequestQueue, err)
	}
	if err := rabbitClient.DeclareQueue(domain.PurchaseResultQueue); err != nil {
		log.Fatalf("error declaring queue %s: %v", domain.PurchaseResultQueue, err)
	}

	publisher := rabbitmq.NewPublisher(rabbitClient)

	productRepository := repository.NewProductRepository(pool, logger)
	productService := service.NewProductService(productRepository, logger)
	cachedProductService := service.NewCachedProductService(productService, rdb, logger)

	purchaseService := service.NewPurchaseService(
		cachedProductService,
		publisher,
		cfg.Purchase.Timeout,
		logger,
	)

	resultConsumer := productRabbit.NewResultConsumer(purchaseService, logger)
	go resultConsumer.Run(ctx, rabbitClient)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	purchasesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_purchases_total",
		Help: "Purchases attempted, labelled by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(purchasesTotal)

	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry: reg,
		}))
		log.Println("Metrics server is listening on " + cfg.Metrics.Port + " 📈")

		if err := http.ListenAndServe(cfg.Metrics.Port, nil); err != nil {
			log.Printf("Metrics serving failed: %v", err)
		}
	}()

	productHandler := productHttp.NewProductHandler(
		cachedProductService,
		purchaseService,
		purchasesTotal,
		logger,
	)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.TTL,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Product Service is alive!")
	})

	productHttp.RegisterRoutes(app, productHandler)

	go func() {
		log.Println("HTTP Product service listening on port: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening HTTP on port %v: %v", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("Stopped HTTP server successfully")
	}

	if err := rabbitClient.Close(); err != nil {
		log.Printf("Error closing rabbitmq connection: %v", err)
	} else {
		log.Println("RabbitMQ connection closed")
	}

	if err := rdb.Close(); err != nil {
		log.Printf("Error closing redis: %v", err)
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
