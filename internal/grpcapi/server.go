// Package grpcapi runs the gRPC listener of the marketplace: the standard
// health service backed by a readiness check, reflection and Prometheus
// interceptors.
package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/service-marketplace/internal/logger"
	"github.com/Leganyst/service-marketplace/internal/metrics"
)

// ServiceName is reported by the health service next to the overall "" entry.
const ServiceName = "marketplace.v1.Marketplace"

const defaultReadyInterval = 10 * time.Second

type Options struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Ready decides SERVING / NOT_SERVING; nil means always serving.
	Ready         func(ctx context.Context) error
	ReadyInterval time.Duration
	Reflection    bool
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger

	ready    func(ctx context.Context) error
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
}

func New(opts Options) *Server {
	s := &Server{
		health:   health.NewServer(),
		log:      opts.Logger,
		ready:    opts.Ready,
		interval: opts.ReadyInterval,
		stopCh:   make(chan struct{}),
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.interval <= 0 {
		s.interval = defaultReadyInterval
	}

	var unary []grpc.UnaryServerInterceptor
	var stream []grpc.StreamServerInterceptor
	if opts.Metrics != nil && opts.Metrics.GRPC != nil {
		unary = append(unary, opts.Metrics.GRPC.UnaryServerInterceptor())
		stream = append(stream, opts.Metrics.GRPC.StreamServerInterceptor())
	}
	unary = append(unary, s.recoverUnary, s.logUnary)
	stream = append(stream, s.recoverStream)

	s.srv = grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)
	healthpb.RegisterHealthServer(s.srv, s.health)
	if opts.Reflection {
		reflection.Register(s.srv)
	}
	if opts.Metrics != nil && opts.Metrics.GRPC != nil {
		opts.Metrics.GRPC.InitializeMetrics(s.srv)
	}
	return s
}

// Serve blocks until lis fails or Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Serve(lis net.Listener) error {
	s.refresh(context.Background())
	go s.watch()

	s.log.Info("grpc server listening", "addr", lis.Addr().String())
	err := s.srv.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Shutdown flips every health entry to NOT_SERVING and drains in-flight
// calls, forcing a stop when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) {
	s.mu.Lock()
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.log.Warn("grpc graceful stop timed out, forcing")
		s.srv.Stop()
		<-stopped
	}
}

func (s *Server) watch() {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			s.refresh(context.Background())
		}
	}
}

func (s *Server) refresh(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.ready(ctx)
		cancel()
		if err != nil {
			s.log.Warn("readiness check failed", "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
		return
	default:
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	attrs := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	}
	if p, ok := peer.FromContext(ctx); ok {
		attrs = append(attrs, "peer", p.Addr.String())
	}
	if err != nil {
		s.log.Warn("grpc call failed", append(attrs, "error", err)...)
	} else {
		s.log.Debug("grpc call", attrs...)
	}
	return resp, err
}

func (s *Server) recoverUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("grpc panic", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func (s *Server) recoverStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("grpc panic", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(srv, ss)
}
