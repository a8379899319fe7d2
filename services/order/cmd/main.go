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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarmatovd/shop-services/pkg/config"
	"github.com/sarmatovd/shop-services/pkg/db"
	generalDomain "github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/kafka"
	outbox "github.com/sarmatovd/shop-services/pkg/outbox/repository"
	"github.com/sarmatovd/shop-services/pkg/outbox/worker"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/order/internal/repository"
	"github.com/sarmatovd/shop-services/services/order/internal/service"
	orderHttp "github.com/sarmatovd/shop-services/services/order/internal/transport/http"
	orderRabbit "github.com/sarmatovd/shop-services/services/order/internal/transport/rabbitmq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using system envs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "order-service")
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
		log.Fatalf("error creating postgres db: %v", err)
	}

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

	logger.Info("order service started!")

	rabbitClient, err := rabbitmq.Connect(cfg.Rabbit.URL, logger)
	if err != nil {
		log.Fatalf("error connecting to rabbitmq: %v", err)
	}

	if err := rabbitClient.DeclareQueue(generalDomain.PurchaseRequestQueue); err != nil {
		log.Fatalf("error declaring queue %s: %v", generalDomain.PurchaseRequestQueue, err)
	}
	if err := rabbitClient.DeclareQueue(generalDomain.PurchaseResultQueue); err != nil {
		log.Fatalf("error declaring queue %s: %v", generalDomain.PurchaseResultQueue, err)
	}

	publisher := rabbitmq.NewPublisher(rabbitClient)

	orderRepo := repository.NewOrderRepository(pool, logger)
	outboxRepo := outbox.NewOutboxRepository(pool, logger)

	kafkaProducer, err := kafka.NewProducer([]string{cfg.Kafka.Brokers})
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	fulfillmentService := service.NewFulfillmentService(orderRepo, outboxRepo, pool, logger)

	consumer := orderRabbit.NewConsumer(fulfillmentService, publisher, logger)
	go consumer.Run(ctx, rabbitClient)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry: reg,
		}))
		log.Println("Metrics server is listening on " + cfg.Metrics.Port + " 📈")

		if err := http.ListenAndServe(cfg.Metrics.Port, nil); err != nil {
			log.Printf("Metrics serving failed: %v", err)
		}
	}()

	orderHandler := orderHttp.NewOrderHandler(fulfillmentService, logger)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Order Service is alive!")
	})

	orderHttp.RegisterRoutes(app, orderHandler)

	go func() {
		log.Println("HTTP Order service listening on port: " + cfg.HTTP.Port)
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

	if err := kafkaProducer.Close(); err != nil {
		log.Printf("Kafka close error: %v", err)
	} else {
		log.Println("Kafka producer closed")
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
