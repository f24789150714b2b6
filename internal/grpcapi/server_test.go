package grpcapi

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Leganyst/service-marketplace/internal/metrics"
)

func startServer(t *testing.T, opts Options) (*Server, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := New(opts)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
		if err := <-errCh; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return s, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("health check %q: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealthServing(t *testing.T) {
	_, c := startServer(t, Options{Metrics: metrics.New(), Reflection: true})

	for _, name := range []string{"", ServiceName} {
		if got := check(t, c, name); got != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("status(%q) = %v, want SERVING", name, got)
		}
	}
}

func TestHealthFollowsReadiness(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	ready := func(context.Context) error {
		if failing.Load() {
			return errors.New("db down")
		}
		return nil
	}
	_, c := startServer(t, Options{Ready: ready, ReadyInterval: 20 * time.Millisecond})

	if got := check(t, c, ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status = %v, want NOT_SERVING", got)
	}

	failing.Store(false)
	deadline := time.Now().Add(2 * time.Second)
	for check(t, c, ServiceName) != healthpb.HealthCheckResponse_SERVING {
		if time.Now().After(deadline) {
			t.Fatalf("health never recovered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestShutdownStopsServing(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := New(Options{})
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Shutdown(ctx)
	s.Shutdown(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve = %v, want nil after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not return")
	}
}
