package utils

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Instruments agrupa las métricas Prometheus del servicio sobre un registry propio.
type Instruments struct {
	Registry      *prometheus.Registry
	Uploads       *prometheus.CounterVec
	RowsAnalyzed  prometheus.Histogram
	BuildDuration prometheus.Histogram
	requests      *prometheus.CounterVec
}

func NewInstruments() *Instruments {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Instruments{
		Registry: reg,
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_uploads_total",
			Help: "Uploaded order files by outcome.",
		}, []string{"outcome"}),
		RowsAnalyzed: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "traffic_rows_analyzed",
			Help:    "Order rows analyzed per report.",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5),
		}),
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "traffic_report_build_seconds",
			Help:    "Time spent parsing an upload and building its report.",
			Buckets: prometheus.DefBuckets,
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}

// Middleware cuenta requests usando el patrón de ruta de chi para acotar la cardinalidad.
func (in *Instruments) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		in.requests.WithLabelValues(r.Method, route, strconv.Itoa(status(ww))).Inc()
	})
}

func (in *Instruments) Handler() http.Handler {
	return promhttp.HandlerFor(in.Registry, promhttp.HandlerOpts{Registry: in.Registry})
}
