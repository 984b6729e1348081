package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mindmend/internal/domain/model"
)

func init() {
	register(
		responsesTotal,
		themesTotal,
		distortionsTotal,
		groundingTotal,
		respondLatencyMs,
	)
}

var (
	responsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmend_responses_total",
			Help: "Composed responses by sentiment label.",
		},
		[]string{"sentiment"},
	)

	themesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmend_themes_total",
			Help: "Theme matches across composed responses.",
		},
		[]string{"theme"},
	)

	distortionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmend_distortions_total",
			Help: "Cognitive distortion detections.",
		},
		[]string{"distortion"},
	)

	groundingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmend_grounding_total",
			Help: "Grounding practices attached to responses; practice=\"none\" when omitted.",
		},
		[]string{"practice"},
	)

	respondLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindmend_respond_latency_ms",
			Help:    "Respond use-case latency in milliseconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"cached"},
	)
)

// ObserveAnalysis counts the signals behind one response.
func ObserveAnalysis(a model.Analysis, grounding model.Grounding) {
	responsesTotal.WithLabelValues(string(a.Sentiment.Label)).Inc()
	for _, t := range a.Themes {
		themesTotal.WithLabelValues(string(t)).Inc()
	}
	for _, d := range a.Distortions {
		distortionsTotal.WithLabelValues(string(d)).Inc()
	}
	practice := "none"
	if p, ok := grounding.Get(); ok {
		practice = norm(p.Name)
	}
	groundingTotal.WithLabelValues(practice).Inc()
}

func ObserveRespondLatency(ms float64, cached bool) {
	label := "false"
	if cached {
		label = "true"
	}
	respondLatencyMs.WithLabelValues(label).Observe(ms)
}
