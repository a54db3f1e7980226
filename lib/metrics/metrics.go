package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_delivery_count",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"platform", "status"}, // status: success, failed
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsdesk_dispatch_duration_seconds",
			Help:    "Time spent fanning out one dispatch job",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	JobCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_dispatch_job_count",
			Help: "Total number of dispatch jobs processed",
		},
		[]string{"status"}, // status: sent, retried, failed
	)
)

func RecordDelivery(platform string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	DeliveryCount.WithLabelValues(platform, status).Inc()
}

func RecordDispatch(start time.Time, status string) {
	DispatchDuration.Observe(time.Since(start).Seconds())
	JobCount.WithLabelValues(status).Inc()
}
