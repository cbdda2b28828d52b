// Package metrics exposes prometheus instrumentation for the wait loop.
//
// The wait command can run for the better part of an hour; with
// --metrics-listen set it serves these collectors over promhttp so the
// orchestrator's monitoring can watch the wait from outside.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/provsync/provsync/internal/coordinate"
)

// WaitMetrics implements coordinate.Recorder over prometheus collectors.
type WaitMetrics struct {
	registry *prometheus.Registry

	polls   *prometheus.CounterVec
	elapsed prometheus.Gauge
}

// NewWaitMetrics creates the collectors on a fresh registry.
func NewWaitMetrics() *WaitMetrics {
	m := &WaitMetrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provsync",
			Subsystem: "wait",
			Name:      "polls_total",
			Help:      "Status document polls, by state machine phase.",
		}, []string{"phase"}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "provsync",
			Subsystem: "wait",
			Name:      "polling_elapsed_seconds",
			Help:      "Time accumulated in the polling phase toward the wait ceiling.",
		}),
	}

	m.registry.MustRegister(m.polls, m.elapsed)
	return m
}

// PollObserved implements coordinate.Recorder.
func (m *WaitMetrics) PollObserved(phase coordinate.Phase) {
	m.polls.WithLabelValues(string(phase)).Inc()
}

// ElapsedSet implements coordinate.Recorder.
func (m *WaitMetrics) ElapsedSet(d time.Duration) {
	m.elapsed.Set(d.Seconds())
}

// Serve exposes the collectors on addr under /metrics until ctx is done.
// Listen errors are returned; a clean shutdown returns nil.
func (m *WaitMetrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Registry returns the underlying registry (tests gather from it).
func (m *WaitMetrics) Registry() *prometheus.Registry {
	return m.registry
}
