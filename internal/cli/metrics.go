package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/eventchains/internal/bench"
)

const shutdownTimeout = 5 * time.Second

// metricsServer exposes a registry on /metrics.
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// startMetricsServer listens on addr and serves reg in the background.
func startMetricsServer(addr string, reg *prometheus.Registry) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ms := &metricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String(), "path", "/metrics")
	return ms, nil
}

// Addr returns the bound listen address.
func (m *metricsServer) Addr() string {
	return m.ln.Addr().String()
}

// Close shuts the server down, waiting for in-flight scrapes.
func (m *metricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return m.srv.Shutdown(ctx)
}

// waitForShutdown blocks until ctx is cancelled or the process receives
// SIGINT or SIGTERM.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
	case <-ctx.Done():
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// benchGauges publishes each measurement as it completes:
//
//	eventchains_bench_mean_seconds{case, tier, name}
//	eventchains_bench_overhead_percent{case, tier, name}
//	eventchains_bench_alloc_bytes{case, tier, name}
type benchGauges struct {
	mean     *prometheus.GaugeVec
	overhead *prometheus.GaugeVec
	alloc    *prometheus.GaugeVec

	// baselines holds the first measurement seen per case and tier.
	baselines map[[2]string]bench.Stats
}

func newBenchGauges(reg prometheus.Registerer) (*benchGauges, error) {
	labels := []string{"case", "tier", "name"}
	g := &benchGauges{
		mean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eventchains_bench_mean_seconds",
			Help: "Mean wall-clock time of a benchmarked implementation.",
		}, labels),
		overhead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eventchains_bench_overhead_percent",
			Help: "Mean time overhead against the tier baseline.",
		}, labels),
		alloc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eventchains_bench_alloc_bytes",
			Help: "Bytes allocated per run.",
		}, labels),
		baselines: make(map[[2]string]bench.Stats),
	}
	for _, c := range []prometheus.Collector{g.mean, g.overhead, g.alloc} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Observe implements bench.Observer. The suite calls it from one goroutine.
func (g *benchGauges) Observe(c bench.Case, tier bench.Tier, m bench.Measurement) {
	key := [2]string{c.Label(), string(tier)}
	base, ok := g.baselines[key]
	if !ok {
		base = m.Stats
		g.baselines[key] = base
	}

	labels := prometheus.Labels{"case": c.Label(), "tier": string(tier), "name": m.Name}
	g.mean.With(labels).Set(m.Stats.Mean.Seconds())
	g.overhead.With(labels).Set(m.Stats.OverheadVs(base))
	g.alloc.With(labels).Set(float64(m.Stats.AllocBytes))
}
