package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/your-org/persondir/internal/config"
	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/observability"
	"github.com/your-org/persondir/internal/seed"
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

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Storage.Driver == config.DriverMemory {
		slog.Error("seeding the memory driver has no effect on a running API")
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("open person store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if _, _, err := seed.Run(ctx, store, cpr.New()); err != nil {
		slog.Error("seed persons", "error", err)
		closeStore()
		os.Exit(1)
	}
}
