package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/possales/gateway"
	"github.com/example/possales/pkg/analytics"
	"github.com/example/possales/pkg/audit"
	"github.com/example/possales/pkg/auth"
	"github.com/example/possales/pkg/config"
	"github.com/example/possales/pkg/discovery"
	"github.com/example/possales/pkg/grpc"
	"github.com/example/possales/pkg/logging"
	"github.com/example/possales/pkg/orders"
	"github.com/example/possales/pkg/repository"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "path to the YAML config file")
	pflag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := logging.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting POS service",
		zap.String("name", cfg.Server.Name),
		zap.String("environment", cfg.Server.Environment),
		zap.Int("port", cfg.Server.Port))

	db, err := repository.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	store := repository.NewStore(db)
	defer store.Close()

	ctx := context.Background()
	deps := gateway.Dependencies{
		Database: store,
	}

	// Redis backs the report cache and the login rate limiter.
	analyticsOpts := []analytics.Option{}
	if loc, err := cfg.Analytics.Location(); err == nil {
		analyticsOpts = append(analyticsOpts, analytics.WithLocation(loc))
	}
	if cfg.Redis.Enabled {
		rdb := repository.NewRedisRepository(&cfg.Redis)
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed, continuing without cache", zap.Error(err))
			rdb.Close()
		} else {
			logger.Info("Redis connected successfully")
			defer rdb.Close()
			analyticsOpts = append(analyticsOpts, analytics.WithCache(rdb, cfg.Analytics.CacheTTL))
			deps.Limiter = rdb
		}
	}

	if cfg.MongoDB.Enabled {
		mongoRepo, err := repository.NewMongoRepository(ctx, &cfg.MongoDB)
		if err != nil {
			logger.Warn("MongoDB connection failed, continuing without audit log", zap.Error(err))
		} else {
			defer mongoRepo.Close(context.Background())
			recorder, err := audit.NewRecorder(mongoRepo, logger)
			if err != nil {
				logger.Fatal("Failed to start audit recorder", zap.Error(err))
			}
			defer recorder.Stop()
			deps.Auditor = recorder
			deps.AuditLogs = mongoRepo
		}
	}

	deps.Orders = orders.NewEngine(store, logger)
	deps.Analytics = analytics.NewEngine(store.Analytics(), logger, analyticsOpts...)
	deps.Auth = auth.NewService(store.Users(), &cfg.Auth)

	gw, err := gateway.NewGateway(cfg, logger.Named("gateway"), deps)
	if err != nil {
		logger.Fatal("Failed to create gateway", zap.Error(err))
	}

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- err
		}
	}()

	var admin *grpc.AdminServer
	if cfg.Admin.Enabled {
		admin = grpc.NewAdminServer(&cfg.Admin, store, logger)
		go func() {
			if err := admin.Start(); err != nil {
				serverErr <- fmt.Errorf("admin server: %w", err)
			}
		}()
	}

	// Connect to etcd for service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
	}
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Error("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", instance.Name),
				zap.String("address", instance.Addr()))
		}
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Error("Server error", zap.Error(err))
	}

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	if admin != nil {
		admin.Stop()
	}

	logger.Info("Service stopped")
}
