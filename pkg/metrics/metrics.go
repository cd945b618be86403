// Package metrics exposes driver statistics as prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "redrcp"

// Transaction results.
const (
	ResultOK           = "ok"
	ResultTimeout      = "timeout"
	ResultFailure      = "failure"
	ResultNotConnected = "not_connected"
	ResultError        = "error"
)

var (
	// FramesSent counts command frames written to the link.
	FramesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_sent_total",
		Help:      "Command frames written to the link.",
	})
	// FramesReceived counts decoded frames by message type.
	FramesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_received_total",
		Help:      "Frames decoded from the link by message type.",
	}, []string{"type"})
	// DecodeErrors counts malformed input dropped by the reader loop.
	DecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_errors_total",
		Help:      "Malformed bytes or frames dropped by the reader loop.",
	})
	// StaleReplies counts replies discarded before a transaction.
	StaleReplies = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_replies_total",
		Help:      "Unclaimed replies discarded before a new transaction.",
	})
	// Disconnects counts transport disconnections seen by the reader loop.
	Disconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disconnects_total",
		Help:      "Transport disconnections observed while reading.",
	})
	// Connected is 1 while the link is open.
	Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected",
		Help:      "1 if the link is open, otherwise 0.",
	})
	// Transactions counts transactions by command and result.
	Transactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Transactions by command and result.",
	}, []string{"command", "result"})
	// TransactionSeconds observes the time from write to last reply.
	TransactionSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transaction_seconds",
		Help:      "Time from writing a command to receiving its replies.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"command"})
	// Notifications counts notifications by kind.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notifications decoded by kind.",
	}, []string{"kind"})
)

// Collectors returns all collectors of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		FramesSent,
		FramesReceived,
		DecodeErrors,
		StaleReplies,
		Disconnects,
		Connected,
		Transactions,
		TransactionSeconds,
		Notifications,
	}
}

// Register registers all collectors. Already registered collectors are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
