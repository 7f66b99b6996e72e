package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audio_conversion",
		Name:      "conversions_total",
		Help:      "Conversion requests by outcome.",
	}, []string{"outcome"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audio_conversion",
		Name:      "conversion_duration_seconds",
		Help:      "Wall-clock duration of handled conversion requests.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ConversionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "audio_conversion",
		Name:      "conversions_in_flight",
		Help:      "Conversions currently holding an encoder slot.",
	})
)

// Serve exposes /metrics on a dedicated listener, separate from the API
// port.
func Serve(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return http.ListenAndServe(":"+port, mux)
}
