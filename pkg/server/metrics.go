package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Input kinds used as the "input" label.
const (
	inputFile = "file"
	inputText = "text"
	inputJSON = "json"
	inputNone = "none"
)

type metrics struct {
	requests *prometheus.CounterVec
	lines    prometheus.Counter
	duration prometheus.Histogram
}

// newMetrics registers the server's collectors on reg.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logdigest",
			Name:      "analyze_requests_total",
			Help:      "Analyze requests by input kind and response status",
		}, []string{"input", "status"}),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logdigest",
			Name:      "lines_analyzed_total",
			Help:      "Log lines read by successful analyses",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "logdigest",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing one request's input",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.requests, m.lines, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
