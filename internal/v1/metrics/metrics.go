package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the chess server.
//
// Naming convention: namespace_subsystem_name
// - namespace: chesshub (application-level grouping)
// - subsystem: websocket, room, game (feature-level grouping)
// - name: specific metric (connections_active, events_total, etc.)
//
// Metric Types:
// - Gauge: Current state (connections, rooms, queue depth)
// - Counter: Cumulative events (moves processed, games finished)
// - Histogram: Latency distributions (processing time)

var (
	// ActiveWebSocketConnections tracks the current number of active WebSocket connections (Gauge - current state)
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chesshub",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of active game rooms (Gauge - current state)
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chesshub",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active game rooms",
	})

	// MatchmakingQueueDepth tracks the number of players waiting for a match (Gauge - current state)
	MatchmakingQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chesshub",
		Subsystem: "room",
		Name:      "matchmaking_queue_depth",
		Help:      "Number of players waiting in the matchmaking queue",
	})

	// PendingForfeits tracks armed forfeit clocks for disconnected players (Gauge - current state)
	PendingForfeits = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chesshub",
		Subsystem: "game",
		Name:      "pending_forfeits",
		Help:      "Number of disconnected players with a running forfeit clock",
	})

	// WebsocketEvents tracks the total number of WebSocket events processed (CounterVec - cumulative)
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chesshub",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total WebSocket events processed",
	}, []string{"event_type", "status"})

	// MovesProcessed counts validated moves by outcome (CounterVec - cumulative)
	MovesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chesshub",
		Subsystem: "game",
		Name:      "moves_total",
		Help:      "Total moves processed, by validation outcome",
	}, []string{"status"})

	// GamesFinished counts completed games by end reason (CounterVec - cumulative)
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chesshub",
		Subsystem: "game",
		Name:      "games_finished_total",
		Help:      "Total games finished, by end reason",
	}, []string{"reason"})

	// RateLimitRequests counts requests that passed the rate limiter (CounterVec - cumulative)
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chesshub",
		Subsystem: "ratelimit",
		Name:      "requests_total",
		Help:      "Total requests checked against a rate limit",
	}, []string{"path"})

	// RateLimitExceeded counts rejected requests by limit type (CounterVec - cumulative)
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chesshub",
		Subsystem: "ratelimit",
		Name:      "exceeded_total",
		Help:      "Total requests rejected by a rate limit",
	}, []string{"path", "limit_type"})

	// MessageProcessingDuration tracks the time spent processing WebSocket messages (HistogramVec - latency distribution)
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chesshub",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing WebSocket messages",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event_type"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
