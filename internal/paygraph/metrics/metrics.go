package metrics

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

// All series carry the stream label: a file path or "<topic>/<partition>".
var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygraph_events_total",
			Help: "Payments processed, by window transition",
		},
		[]string{"stream", "transition"},
	)

	ParseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygraph_parse_errors_total",
			Help: "Input records dropped because they could not be parsed",
		},
		[]string{"stream"},
	)

	EvictedEdgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygraph_evicted_edges_total",
			Help: "Edges removed because they fell out of the window",
		},
		[]string{"stream"},
	)

	GraphVertices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paygraph_graph_vertices",
			Help: "Participants currently in the window",
		},
		[]string{"stream"},
	)

	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paygraph_graph_edges",
			Help: "Payment relationships currently in the window",
		},
		[]string{"stream"},
	)

	MedianDegree = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paygraph_median_degree",
			Help: "Last emitted median degree",
		},
		[]string{"stream"},
	)
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, log *zap.SugaredLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Infow("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
