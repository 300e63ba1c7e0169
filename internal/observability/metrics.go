package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_login_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// FlowTransitions counts login flow transitions by trigger and outcome
	FlowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_login_flow_transitions_total",
			Help: "Number of login flow transitions",
		},
		[]string{"trigger", "from_step", "outcome"},
	)

	// StaleResponses counts remote responses discarded after the flow moved on
	StaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_login_stale_responses_total",
			Help: "Number of remote responses discarded as stale",
		},
		[]string{"operation"},
	)

	// VerificationCallDuration tracks remote verification service latency
	VerificationCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "app_login_verification_call_duration_seconds",
			Help:    "Duration of calls to the verification service in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	// StoreOperations tracks client store operations
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_login_store_operations_total",
			Help: "Number of client store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// LoginEvents counts broadcast login and logout events
	LoginEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_login_events_total",
			Help: "Number of published session events",
		},
		[]string{"kind"},
	)

	// ActiveFlows tracks open login flows
	ActiveFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_login_active_flows",
			Help: "Number of open login flows",
		},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_login_active_connections",
			Help: "Number of active connections",
		},
	)
)
