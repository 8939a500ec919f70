package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PacketsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ns_fixtures_packets_generated_total",
			Help: "Total number of synthetic packets generated by archetype",
		},
		[]string{"archetype"},
	)

	BytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ns_fixtures_bytes_written_total",
			Help: "Total capture bytes written by archetype",
		},
		[]string{"archetype"},
	)

	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ns_fixtures_errors_total",
			Help: "Failed fixture builds by archetype and error kind",
		},
		[]string{"archetype", "kind"},
	)

	GenerateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ns_fixtures_generate_duration_seconds",
			Help:    "Time to generate and serialize one fixture",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"archetype"},
	)
)

func init() {
	prometheus.MustRegister(PacketsGenerated, BytesWritten, Errors, GenerateDuration)
}
