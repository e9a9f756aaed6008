package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/example/possales/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service name; "" reports the same status.
const ServiceName = "possales"

type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminServer exposes gRPC health checking and reflection. Health follows
// the result of periodic pings against the database.
type AdminServer struct {
	config *config.AdminConfig
	pinger Pinger
	logger *zap.Logger
	srv    *grpc.Server
	health *health.Server

	stopOnce sync.Once
	stop     chan struct{}
}

func NewAdminServer(cfg *config.AdminConfig, pinger Pinger, logger *zap.Logger) *AdminServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &AdminServer{
		config: cfg,
		pinger: pinger,
		logger: logger.Named("admin"),
		srv:    srv,
		health: hs,
		stop:   make(chan struct{}),
	}
}

// Check pings once and publishes the resulting status.
func (s *AdminServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *AdminServer) Start() error {
	lis, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

func (s *AdminServer) Serve(lis net.Listener) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	s.Check(ctx)
	cancel()

	go s.watch()

	s.logger.Info("Admin server started", zap.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

func (s *AdminServer) watch() {
	interval := s.config.CheckInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			s.Check(ctx)
			cancel()
		}
	}
}

func (s *AdminServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.health.Shutdown()
		s.srv.GracefulStop()
	})
}
