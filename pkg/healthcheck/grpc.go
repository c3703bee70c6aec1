// Package healthcheck runs the standard gRPC health service next to the HTTP
// API so orchestrators can probe the process without speaking JSON.
package healthcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
	log    *slog.Logger
}

// Listen binds addr and registers the health service with status SERVING for
// the overall server and for each named service.
func Listen(addr string, log *slog.Logger, services ...string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, svc := range services {
		hs.SetServingStatus(svc, healthpb.HealthCheckResponse_SERVING)
	}

	return &Server{grpc: gs, health: hs, lis: lis, log: log}, nil
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

// Serve blocks until the server stops.
func (s *Server) Serve() error {
	s.log.Info("grpc health starting", slog.String("addr", s.lis.Addr().String()))
	return s.grpc.Serve(s.lis)
}

// Stop flips every service to NOT_SERVING and stops gracefully, forcing the
// stop once ctx expires.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("graceful stop timeout, forcing stop")
		s.grpc.Stop()
	case <-stopped:
	}
}

// StopTimeout is Stop with a fresh deadline.
func (s *Server) StopTimeout(d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	s.Stop(ctx)
}
