package main

import (
	"context"
	"fmt"
	"os"

	"github.com/example/possales/pkg/config"
	"github.com/example/possales/pkg/logging"
	"github.com/example/possales/pkg/repository"
	"github.com/example/possales/pkg/seed"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "path to the YAML config file")
	catalog := pflag.Bool("catalog", false, "insert the product catalog, skipping existing products")
	sample := pflag.Int("sample", 0, "number of randomized completed orders to generate")
	days := pflag.Int("days", 6, "spread sample orders over this many past days")
	pflag.Parse()

	if !*catalog && *sample <= 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: pass --catalog and/or --sample N")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	db, err := repository.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	store := repository.NewStore(db)
	defer store.Close()

	ctx := context.Background()

	if *catalog {
		added, err := seed.SeedCatalog(ctx, store)
		if err != nil {
			logger.Fatal("Failed to seed catalog", zap.Error(err))
		}
		logger.Info("Catalog seeded", zap.Int("added", added), zap.Int("catalog", len(seed.Catalog)))
	}

	if *sample > 0 {
		created, err := seed.GenerateSample(ctx, store, seed.SampleOptions{
			Orders:     *sample,
			Days:       *days,
			Production: cfg.Server.IsProduction(),
		})
		if err != nil {
			logger.Fatal("Failed to generate sample orders", zap.Error(err))
		}
		logger.Info("Sample orders generated", zap.Int("orders", created), zap.Int("days", *days))
	}
}
