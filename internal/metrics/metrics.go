// Package metrics collects remotecl-server's Prometheus metrics and
// serves them on a diagnostic HTTP port separate from the protocol
// listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every counter, gauge, and histogram the server updates
// while dispatching connections.
type Registry struct {
	registry prometheus.Registerer

	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
	packetsTotal      *prometheus.CounterVec
	dispatchErrors    *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	eventStreams      prometheus.Gauge
	callbacksFired    prometheus.Counter
}

// New builds a Registry of metrics registered against reg. Pass nil to use
// a fresh, private prometheus.Registry (the common case for tests).
func New(reg *prometheus.Registry) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total number of client connections accepted.",
		}),

		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Number of client connections currently open.",
		}),

		packetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "packets_total",
			Help:      "Total number of request packets dispatched, by tag.",
		}, []string{"tag"}),

		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "dispatch_errors_total",
			Help:      "Total number of dispatch failures, by class.",
		}, []string{"class"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent handling a single request packet, by tag.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tag"}),

		eventStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "event_streams_active",
			Help:      "Number of connected event-callback streams.",
		}),

		callbacksFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "remotecl",
			Subsystem: "server",
			Name:      "callbacks_fired_total",
			Help:      "Total number of event callbacks delivered to clients.",
		}),
	}
}

// ConnectionOpened records a newly accepted connection.
func (r *Registry) ConnectionOpened() {
	r.connectionsTotal.Inc()
	r.connectionsActive.Inc()
}

// ConnectionClosed records a connection going away.
func (r *Registry) ConnectionClosed() {
	r.connectionsActive.Dec()
}

// ObservePacket records one dispatched request packet and how long it took
// to handle, keyed by its wire tag name.
func (r *Registry) ObservePacket(tag string, d time.Duration) {
	r.packetsTotal.WithLabelValues(tag).Inc()
	r.dispatchDuration.WithLabelValues(tag).Observe(d.Seconds())
}

// ObserveError records a dispatch failure, classified by class (e.g.
// "transport", "protocol", "backend").
func (r *Registry) ObserveError(class string) {
	r.dispatchErrors.WithLabelValues(class).Inc()
}

// EventStreamOpened/EventStreamClosed track connected event-callback streams.
func (r *Registry) EventStreamOpened() { r.eventStreams.Inc() }
func (r *Registry) EventStreamClosed() { r.eventStreams.Dec() }

// CallbackFired records one delivered event callback.
func (r *Registry) CallbackFired() { r.callbacksFired.Inc() }

// Server returns an http.Server exposing /metrics on addr. The caller is
// responsible for calling ListenAndServe and Shutdown.
func (r *Registry) Server(addr string) *http.Server {
	mux := http.NewServeMux()
	gatherer, ok := r.registry.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux}
}

// Serve starts r's diagnostic HTTP server and blocks until ctx is
// cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
