package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarmatovd/shop-services/pkg/config"
	"github.com/sarmatovd/shop-services/pkg/db"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/notification/internal/infrastructure/email"
	"github.com/sarmatovd/shop-services/services/notification/internal/service"
	notificationKafka "github.com/sarmatovd/shop-services/services/notification/internal/transport/kafka"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using system envs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "notification-service")
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

	logger.Info("notification service started!")

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

	emailSender := email.NewSMTPSender(logger)
	notificationService := service.NewNotificationService(emailSender, logger, pool)

	consumer := notificationKafka.NewConsumer([]string{cfg.Kafka.Brokers}, notificationService, logger)

	consumer.Run(ctx)

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
