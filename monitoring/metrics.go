package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	ticketQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_query_duration_seconds",
			Help:    "Duration of filtered ticket list queries",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"outcome"},
	)

	realtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_change_events_total",
			Help: "Record change events seen per collection",
		},
		[]string{"collection"},
	)

	realtimeRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_refreshes_total",
			Help: "Coalesced refresh signals fired per collection",
		},
		[]string{"collection"},
	)

	chatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_chat_messages_total",
			Help: "Support chat sends by final state",
		},
		[]string{"state"},
	)

	campaignDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_deliveries_total",
			Help: "Campaign delivery outcomes",
		},
		[]string{"status"},
	)

	lookupCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_requests_total",
			Help: "Two-step lookup cache requests",
		},
		[]string{"result"},
	)
)

// TrackTicketQuery records one list query round trip.
func TrackTicketQuery(duration time.Duration, outcome string) {
	ticketQueryDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// TrackRealtimeEvent counts one raw change notification.
func TrackRealtimeEvent(collection string) {
	realtimeEvents.WithLabelValues(collection).Inc()
}

// TrackRealtimeRefresh counts one coalesced refresh signal.
func TrackRealtimeRefresh(collection string) {
	realtimeRefreshes.WithLabelValues(collection).Inc()
}

// TrackChatMessage counts a send reaching a terminal state.
func TrackChatMessage(state string) {
	chatMessages.WithLabelValues(state).Inc()
}

// TrackDelivery counts one per-recipient campaign outcome.
func TrackDelivery(status string) {
	campaignDeliveries.WithLabelValues(status).Inc()
}

// TrackLookupCache counts a cache hit or miss.
func TrackLookupCache(result string) {
	lookupCacheHits.WithLabelValues(result).Inc()
}

// Monitor samples Redis-backed gauges in the background.
type Monitor struct {
	redis *redis.Client
}

var (
	rateLimitedKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_tracked_clients",
			Help: "Clients currently tracked by the rate limiter",
		},
	)
)

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()

		keys, err := m.redis.Keys(ctx, "ratelimit:*").Result()
		if err != nil {
			continue
		}
		rateLimitedKeys.Set(float64(len(keys)))
	}
}
