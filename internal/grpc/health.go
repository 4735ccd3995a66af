// Package grpc exposes dependency health over grpc.health.v1 and to the HTTP /health route.
package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the overall status key reported alongside per-dependency keys.
const ServiceName = "storefront"

type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// HealthChecker probes dependencies on a ticker and mirrors the results into a
// grpc health server. The empty service name tracks the overall status.
type HealthChecker struct {
	server  *health.Server
	period  time.Duration
	timeout time.Duration
	log     *logger.Logger

	checks []check
	mu     sync.RWMutex
	last   map[string]error
}

func NewHealthChecker(period time.Duration, log *logger.Logger) *HealthChecker {
	return &HealthChecker{
		server:  health.NewServer(),
		period:  period,
		timeout: 2 * time.Second,
		log:     log.With("component", "HealthChecker"),
		last:    make(map[string]error),
	}
}

// Register must be called before Run.
func (h *HealthChecker) Register(name string, fn CheckFunc) {
	h.checks = append(h.checks, check{name: name, fn: fn})
	h.server.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
}

func (h *HealthChecker) Run(ctx context.Context) {
	h.CheckNow(ctx)

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.CheckNow(ctx)
		case <-ctx.Done():
			h.server.Shutdown()
			return
		}
	}
}

// CheckNow runs every registered check once and updates the served statuses.
func (h *HealthChecker) CheckNow(ctx context.Context) {
	results := make(map[string]error, len(h.checks))
	for _, c := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		results[c.name] = c.fn(checkCtx)
		cancel()
	}

	overall := healthpb.HealthCheckResponse_SERVING
	for name, err := range results {
		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			h.log.Warn("dependency unhealthy", "dependency", name, "error", err)
		}
		h.server.SetServingStatus(name, status)
	}
	h.server.SetServingStatus("", overall)
	h.server.SetServingStatus(ServiceName, overall)

	h.mu.Lock()
	h.last = results
	h.mu.Unlock()
}

// Report returns the last known status per dependency.
func (h *HealthChecker) Report() (bool, map[string]string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	healthy := true
	out := make(map[string]string, len(h.last))
	for name, err := range h.last {
		if err != nil {
			healthy = false
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return healthy, out
}

func (h *HealthChecker) Server() *health.Server {
	return h.server
}

// NewServer builds the traced grpc server carrying the health service and reflection.
func NewServer(checker *HealthChecker) *grpc.Server {
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(srv, checker.Server())

	// Enable reflection for grpcurl/grpcui
	reflection.Register(srv)
	return srv
}
