// Package metrics declares Prometheus series for the signaling server.
//
// Naming convention: namespace_subsystem_name
//   - namespace: rtc_signal (application-level grouping)
//   - subsystem: websocket, room, verb, rate_limit, redis (feature grouping)
//   - name: specific metric
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSocketConnections tracks the current number of live peer connections.
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rtc_signal",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of rooms in the registry.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of rooms held by the registry",
	})

	// RoomMembers tracks current membership count per room.
	RoomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "members_count",
		Help:      "Number of members currently in each room",
	}, []string{"room_code"})

	// RoomStateTransitions counts session-state transitions by destination state.
	RoomStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "state_transitions_total",
		Help:      "Total room session-state transitions",
	}, []string{"to_state"})

	// RoomGCSweeps counts empty-room garbage collection sweeps by outcome.
	RoomGCSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "gc_sweeps_total",
		Help:      "Total empty-room GC sweeps, by outcome (removed, cancelled)",
	}, []string{"outcome"})

	// VerbsRelayed counts verbs dispatched by the coordinator.
	VerbsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "verb",
		Name:      "relayed_total",
		Help:      "Total verbs processed by the coordinator, by verb and outcome",
	}, []string{"verb", "outcome"})

	// MessageProcessingDuration tracks coordinator handler latency per verb.
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rtc_signal",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing an inbound message",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"verb"})

	// AdmissionRejections counts CONNECTION attempts answered with ROOM_FULL,
	// by reason (room full, or peer already in a different room).
	AdmissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "admission_rejections_total",
		Help:      "Total CONNECTION attempts rejected with ROOM_FULL, by reason",
	}, []string{"reason"})

	// CodeGenerationRetries counts room-code collision retries.
	CodeGenerationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "room",
		Name:      "code_generation_retries_total",
		Help:      "Total room-code draws discarded due to collision",
	})

	// RateLimitExceeded tracks the total number of requests that exceeded the rate limit.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "rate_limit",
		Name:      "exceeded_total",
		Help:      "Total number of requests that exceeded the rate limit",
	}, []string{"endpoint", "reason"})

	// RateLimitRequests tracks the total number of requests checked against the rate limiter.
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "rate_limit",
		Name:      "requests_total",
		Help:      "Total number of requests checked against the rate limiter",
	}, []string{"endpoint"})

	// RedisOperationsTotal tracks the total number of Redis operations performed by the rate limiter.
	RedisOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtc_signal",
		Subsystem: "redis",
		Name:      "operations_total",
		Help:      "Total number of Redis operations",
	}, []string{"operation", "status"})

	// RedisOperationDuration tracks the duration of Redis operations.
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rtc_signal",
		Subsystem: "redis",
		Name:      "operation_duration_seconds",
		Help:      "Duration of Redis operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
