package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnchorEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_anchor_events_total",
			Help: "Anchor events handled by the dispatcher",
		},
		[]string{"event", "outcome"}, // outcome: applied, duplicate, unmatched, unknown_process
	)

	AnchorEventsOutOfOrder = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_anchor_events_out_of_order_total",
			Help: "Anchor events that arrived while an earlier milestone of the same process was still open",
		},
		[]string{"event"},
	)

	PlansBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_plans_built_total",
			Help: "Milestone plans expanded from service-type templates",
		},
		[]string{"service_type", "outcome"}, // outcome: created, repeat, unknown_type
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "milestone_classify_duration_seconds",
			Help:    "Time spent classifying open milestones for a dashboard read",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

func RecordAnchorEvent(event, outcome string) {
	AnchorEventsProcessed.WithLabelValues(event, outcome).Inc()
}

func RecordOutOfOrderEvent(event string) {
	AnchorEventsOutOfOrder.WithLabelValues(event).Inc()
}

func RecordPlanBuilt(serviceType, outcome string) {
	PlansBuilt.WithLabelValues(serviceType, outcome).Inc()
}

func RecordClassifyDuration(duration time.Duration) {
	ClassifyDuration.Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
