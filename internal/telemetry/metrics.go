// Package telemetry exposes swatch's Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// dispatchDuration tracks reducer plus notification time per action type.
	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swatch_dispatch_duration_seconds",
		Help:    "Time spent reducing and notifying per dispatched action",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12), // 50µs to ~100ms
	}, []string{"action"})

	// dispatchVetoes counts actions rejected by middleware.
	dispatchVetoes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swatch_dispatch_vetoes_total",
		Help: "Actions vetoed by middleware",
	}, []string{"middleware", "action"})

	// actionsTotal counts applied actions.
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swatch_actions_total",
		Help: "Actions applied to the store",
	}, []string{"action"})

	persistWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swatch_persist_writes_total",
		Help: "Persisted state writes by result",
	}, []string{"result"})

	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swatch_api_requests_total",
		Help: "Pricing API requests by method and outcome",
	}, []string{"method", "outcome"})
)

// ObserveDispatch records one applied action and how long it took.
func ObserveDispatch(action string, d time.Duration) {
	actionsTotal.WithLabelValues(action).Inc()
	dispatchDuration.WithLabelValues(action).Observe(d.Seconds())
}

// CountVeto records a veto by the named middleware.
func CountVeto(middleware, action string) {
	dispatchVetoes.WithLabelValues(middleware, action).Inc()
}

// CountPersist records a persistence write outcome.
func CountPersist(ok bool) {
	if ok {
		persistWrites.WithLabelValues("ok").Inc()
		return
	}
	persistWrites.WithLabelValues("failed").Inc()
}

// CountRequest records a pricing API request outcome.
func CountRequest(method string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	apiRequests.WithLabelValues(method, outcome).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr is a
// no-op.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
