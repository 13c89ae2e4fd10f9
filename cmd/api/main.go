package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/persondir/internal/api"
	"github.com/your-org/persondir/internal/api/handlers"
	"github.com/your-org/persondir/internal/api/ws"
	"github.com/your-org/persondir/internal/config"
	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/listing"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/persons"
	"github.com/your-org/persondir/internal/queue"
	"github.com/your-org/persondir/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting person directory API", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("open person store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	checks := []handlers.Check{{Name: cfg.Storage.Driver, Ping: store.Ping}}

	var pictures persons.PictureStore = persons.NoPictures{}
	minioStore, err := storage.OpenPictures(ctx, cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if minioStore != nil {
		pictures = minioStore
		checks = append(checks, handlers.Check{Name: "minio", Ping: minioStore.Ping})
	} else {
		slog.Warn("minio not configured; profile picture uploads are disabled")
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Without NATS the hub receives events in-process.
	var publisher queue.Publisher = hub
	if cfg.NATS.URL != "" {
		producer, err := queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureStreams(ctx); err != nil {
			slog.Warn("ensure nats streams", "error", err)
		}
		publisher = producer
		checks = append(checks, handlers.Check{Name: "nats", Ping: func(context.Context) error { return producer.Ping() }})

		// Fan persisted events back out to WebSocket clients.
		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		if err := consumer.ConsumeEvents(ctx, "api-ws", queue.PersonsSubjectBase+".>", hub.PublishPersonEvent); err != nil {
			slog.Warn("start event consumer", "error", err)
		}
	}

	codec := cpr.New()
	graph := friends.NewManager(store, friends.WithPublisher(publisher), friends.WithLogger(logger))
	repo := persons.NewRepository(store, pictures, graph,
		persons.WithCodec(codec),
		persons.WithPublisher(publisher),
		persons.WithLogger(logger),
	)
	presenter := persons.NewPresenter(pictures, codec, logger)

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:      cfg.Server.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		Repository:  repo,
		Graph:       graph,
		Engine:      listing.NewEngine(store, presenter),
		Presenter:   presenter,
		Hub:         hub,
		Checks:      checks,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
