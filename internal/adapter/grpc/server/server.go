// Package server exposes the gRPC health endpoint used by orchestrators
// that probe over gRPC instead of HTTP.
package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bankislami/voicebot/internal/adapter/grpc/interceptors"
	"github.com/bankislami/voicebot/internal/service/health"
)

const serviceName = "voicebot"

// GRPCServer wraps the gRPC server and its health reporter.
type GRPCServer struct {
	server   *grpc.Server
	reporter *grpchealth.Server
	checks   *health.Service
	log      *zap.Logger
	done     chan struct{}
}

// NewGRPCServer creates the server with logging and metrics interceptors.
func NewGRPCServer(checks *health.Service, log *zap.Logger) *GRPCServer {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.UnaryMetricsInterceptor(),
		),
	)

	reporter := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(s, reporter)

	// Enable reflection for debugging (e.g. grpcurl)
	reflection.Register(s)

	return &GRPCServer{
		server:   s,
		reporter: reporter,
		checks:   checks,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Serve starts serving and keeps the health status in sync with the
// readiness checks.
func (s *GRPCServer) Serve(lis net.Listener) error {
	go s.watchReadiness()
	return s.server.Serve(lis)
}

// watchReadiness mirrors the readiness checks into the gRPC health status.
func (s *GRPCServer) watchReadiness() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	s.updateStatus()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.updateStatus()
		}
	}
}

func (s *GRPCServer) updateStatus() {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if s.checks != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ready := s.checks.Ready(ctx)
		cancel()
		if !ready.Ready {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.reporter.SetServingStatus(serviceName, status)
	s.reporter.SetServingStatus("", status)
}

// Stop drains in-flight requests and shuts down.
func (s *GRPCServer) Stop() {
	close(s.done)
	s.reporter.Shutdown()
	s.server.GracefulStop()
}
