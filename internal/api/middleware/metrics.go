package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestMetrics counts handled requests per route template and status.
// When a sampled trace is present the increment carries the traceID as an
// exemplar.
func RequestMetrics(requests *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}

			counter := requests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status))
			if span := trace.SpanContextFromContext(r.Context()); span.IsSampled() {
				if adder, ok := counter.(prometheus.ExemplarAdder); ok {
					adder.AddWithExemplar(1, prometheus.Labels{"traceID": span.TraceID().String()})
					return
				}
			}
			counter.Inc()
		})
	}
}
