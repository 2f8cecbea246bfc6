// Package telemetry exposes prometheus metrics for the dialer engine.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	CallsStarted     = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_calls_started_total", Help: "Dial attempts handed to call control"})
	CallsAnswered    = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_calls_answered_total", Help: "Calls that connected"})
	CallsMissed      = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_calls_missed_total", Help: "Calls that ended unanswered (missed or voicemail)"})
	CallsFailed      = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_calls_failed_total", Help: "Dial attempts rejected by call control"})
	QueueReorders    = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_queue_reorders_total", Help: "Rep queue re-sorts (manual and miss-streak)"})
	ComplianceBlocks = prometheus.NewCounter(prometheus.CounterOpts{Name: "dialer_compliance_blocks_total", Help: "Dial commands rejected by the compliance gate"})
	RepQueueDepth    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "dialer_rep_queue_depth", Help: "Leads waiting in the rep queue"})
	AIQueueDepth     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "dialer_ai_queue_depth", Help: "Leads waiting in the AI queue"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			CallsStarted,
			CallsAnswered,
			CallsMissed,
			CallsFailed,
			QueueReorders,
			ComplianceBlocks,
			RepQueueDepth,
			AIQueueDepth,
		)
	})
	return promhttp.Handler()
}
