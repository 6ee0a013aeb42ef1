// Package exporter publishes the latest samples and alert counts as
// Prometheus metrics on an opt-in HTTP endpoint.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

const namespace = "pulsemon"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Exporter holds pulsemon's metrics in its own registry, separate from the
// process-global default.
type Exporter struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	cpu     prometheus.Gauge
	memory  prometheus.Gauge
	disk    *prometheus.GaugeVec
	network *prometheus.GaugeVec
	alerts  *prometheus.CounterVec
	samples *prometheus.CounterVec
}

// New creates an Exporter with every metric registered. If logger is nil, a
// no-op logger is used.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent",
			Help:      "System-wide CPU utilization averaged over the last window.",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_percent",
			Help:      "Virtual memory utilization.",
		}),
		disk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_mbps",
			Help:      "Disk throughput in MB/s (1 MB = 1048576 bytes).",
		}, []string{"direction"}),
		network: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_mbps",
			Help:      "Network throughput in MB/s (1 MB = 1048576 bytes).",
		}, []string{"direction"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Threshold alerts raised, by resource kind.",
		}, []string{"kind"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples consumed, by resource kind.",
		}, []string{"kind"}),
	}

	e.registry.MustRegister(e.cpu, e.memory, e.disk, e.network, e.alerts, e.samples)

	// Pre-create label values so every series is visible from the first scrape.
	for _, k := range collectors.Kinds {
		e.alerts.WithLabelValues(string(k))
		e.samples.WithLabelValues(string(k))
	}
	e.disk.WithLabelValues("read")
	e.disk.WithLabelValues("write")
	e.network.WithLabelValues("upload")
	e.network.WithLabelValues("download")

	return e
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Name implements presenter.Sink.
func (e *Exporter) Name() string { return "exporter" }

// Consume implements presenter.Sink. Gauges end at the last sample of each
// kind in the batch.
func (e *Exporter) Consume(_ context.Context, batch []collectors.Sample) error {
	for _, s := range batch {
		switch s.Kind {
		case collectors.KindCPU:
			e.cpu.Set(s.Percent)
		case collectors.KindMemory:
			e.memory.Set(s.Percent)
		case collectors.KindDisk:
			e.disk.WithLabelValues("read").Set(s.ReadMBs())
			e.disk.WithLabelValues("write").Set(s.WriteMBs())
		case collectors.KindNetwork:
			e.network.WithLabelValues("upload").Set(s.UploadMBs())
			e.network.WithLabelValues("download").Set(s.DownloadMBs())
		default:
			return fmt.Errorf("exporter: unknown kind %q", s.Kind)
		}
		e.samples.WithLabelValues(string(s.Kind)).Inc()
	}
	return nil
}

// ObserveAlert implements presenter.AlertObserver.
func (e *Exporter) ObserveAlert(a status.Alert) {
	e.alerts.WithLabelValues(string(a.Kind)).Inc()
}

// Handler returns the /metrics handler for this exporter's registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled. It
// returns nil after a clean shutdown.
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("exporter: listen %s: %w", addr, err)
	}
	return e.ServeListener(ctx, ln)
}

// ServeListener serves /metrics on ln until ctx is cancelled. It takes
// ownership of ln.
func (e *Exporter) ServeListener(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	e.logger.Info("exporter: serving metrics", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("exporter: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("exporter: shutdown: %w", err)
	}
	e.logger.Info("exporter: stopped")
	return nil
}
