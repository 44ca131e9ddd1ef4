package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DirectionPublish = "publish"
	DirectionReceive = "receive"

	ResultOK          = "ok"
	ResultEncodeError = "encode_error"
	ResultDecodeError = "decode_error"
	ResultSendError   = "send_error"
	ResultDropped     = "dropped"
)

var (
	registerOnce sync.Once

	relayEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "treescale",
			Subsystem: "relay",
			Name:      "events_total",
			Help:      "Events handled by the relay.",
		},
		[]string{"direction", "result"},
	)
	relayRecordBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "treescale",
			Subsystem: "relay",
			Name:      "record_bytes",
			Help:      "Encoded record size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(relayEvents, relayRecordBytes)
	})
}

// RecordRelayEvent counts one relay outcome. size is the encoded record size,
// or 0 when no record was produced.
func RecordRelayEvent(direction, result string, size int) {
	RegisterMetrics()
	relayEvents.WithLabelValues(direction, result).Inc()
	if size > 0 {
		relayRecordBytes.WithLabelValues(direction).Observe(float64(size))
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
