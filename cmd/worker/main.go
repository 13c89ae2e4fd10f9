package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/persondir/internal/config"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/persons"
	"github.com/your-org/persondir/internal/queue"
	"github.com/your-org/persondir/internal/storage"
)

const metricsAddr = ":8082"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Storage.Driver == config.DriverMemory {
		slog.Error("worker needs a shared store; the memory driver is per process")
		os.Exit(1)
	}

	slog.Info("starting person directory worker",
		"repair_interval", cfg.Repair.Interval,
		"sweep_pictures", cfg.Repair.SweepPictures,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("open person store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	graph := friends.NewManager(store, friends.WithLogger(logger))

	var sweeper *persons.Sweeper
	if cfg.Repair.SweepPictures {
		minioStore, err := storage.OpenPictures(ctx, cfg.MinIO)
		if err != nil {
			slog.Error("connect to minio", "error", err)
			os.Exit(1)
		}
		if minioStore == nil {
			slog.Warn("picture sweep enabled but minio is not configured; skipping")
		} else {
			sweeper = persons.NewSweeper(store, minioStore, cfg.Repair.OrphanMinAge, logger)
		}
	}

	// Deleted persons: re-run the reference scrub once the delete has
	// committed, dropping any reference a concurrent friend write added after
	// the API's cascade. The scrub is idempotent.
	if cfg.NATS.URL != "" {
		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		err = consumer.ConsumeEvents(ctx, "worker-cascade", queue.Subject(models.PersonDeleted),
			func(ctx context.Context, evt models.PersonEvent) error {
				_, err := graph.CascadeDeleteReferences(ctx, evt.PersonID)
				return err
			})
		if err != nil {
			slog.Error("start cascade consumer", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("nats not configured; delete events are not consumed")
	}

	g, gctx := errgroup.WithContext(ctx)

	// Metrics endpoint
	srv := &http.Server{Addr: metricsAddr, Handler: metricsMux()}
	g.Go(func() error {
		slog.Info("worker metrics listening", "addr", metricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runPeriodically(gctx, cfg.Repair.Interval, func(ctx context.Context) {
			if _, err := graph.Repair(ctx); err != nil {
				slog.Error("friend graph repair", "error", err)
			}
			if sweeper != nil {
				if _, err := sweeper.Sweep(ctx); err != nil {
					slog.Error("picture sweep", "error", err)
				}
			}
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("worker stopped")
}

// runPeriodically calls fn immediately and then every interval until ctx is
// done.
func runPeriodically(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		fn(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
