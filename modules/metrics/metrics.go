package metrics

import (
	"context"
	"errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"net"
	"net/http"
	"time"
)

const (
	eventTypeLabel = "event_type"
	reasonLabel    = "reason"
)

// Metrics counts what the stream loop decodes and reports. Each instance
// owns its registry.
type Metrics struct {
	Registry *prometheus.Registry

	Buffers    prometheus.Counter
	Bytes      prometheus.Counter
	Events     *prometheus.CounterVec
	Reported   *prometheus.CounterVec
	Suppressed *prometheus.CounterVec
	Anomalies  *prometheus.CounterVec

	server *http.Server
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Buffers: factory.NewCounter(prometheus.CounterOpts{
			Name: "fsewatcher_buffers_total",
			Help: "The total number of buffers read from the event source",
		}),
		Bytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "fsewatcher_bytes_total",
			Help: "The total number of bytes read from the event source",
		}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsewatcher_events_total",
			Help: "The total number of decoded event records",
		}, []string{eventTypeLabel}),
		Reported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsewatcher_reported_total",
			Help: "The total number of emitted path reports",
		}, []string{eventTypeLabel}),
		Suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsewatcher_suppressed_total",
			Help: "The total number of paths suppressed as repeats",
		}, []string{eventTypeLabel}),
		Anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsewatcher_anomalies_total",
			Help: "The total number of records carrying an unsupported condition",
		}, []string{reasonLabel}),
	}
}

// Serve exposes the registry on addr under /metrics until Close is called.
func (m *Metrics) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Caller().Err(err).Msg("metrics server failed")
		}
	}()
	log.Info().Msgf("serving metrics on %s", ln.Addr())

	return nil
}

func (m *Metrics) Close() error {
	if m.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return m.server.Shutdown(ctx)
}
