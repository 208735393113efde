package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medicall"

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	CallsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voice_calls_dispatched_total",
		Help:      "Outbound voice calls requested from the call provider",
	}, []string{"call_type", "status"})

	VoiceClones = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voice_clones_total",
		Help:      "Voice clone attempts by terminal status",
	}, []string{"status"})

	Reminders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "medication_reminders_total",
		Help:      "Medication reminders sent by channel",
	}, []string{"channel", "status"})

	Webhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "call_webhooks_total",
		Help:      "Call provider webhooks by result",
	}, []string{"result"})
)

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func Status(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
