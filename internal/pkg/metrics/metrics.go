// Package metrics holds the Prometheus instruments used across the service.
// Collectors are registered with the default registry; Handler exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AttendanceActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_actions_total",
			Help: "Clock and break actions by action and result (accepted, rejected, error).",
		}, []string{"action", "result"})

	ChangeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_requests_total",
			Help: "Change request lifecycle events (created, approved, rejected, withdrawn).",
		}, []string{"event"})

	ChangeRequestUpsertFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "change_request_upsert_fallbacks_total",
			Help: "Approvals that hit an existing record on insert and fell back to update.",
		})

	ShareResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_resolutions_total",
			Help: "Public share token lookups by result (ok, not_found, expired).",
		}, []string{"result"})

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by channel and result.",
		}, []string{"channel", "result"})

	NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Events waiting in the notification queue.",
		})

	LineWebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "line_webhook_events_total",
			Help: "Inbound LINE webhook events by recognized command.",
		}, []string{"command"})
)

func init() {
	prometheus.MustRegister(
		AttendanceActions,
		ChangeRequests,
		ChangeRequestUpsertFallbacks,
		ShareResolutions,
		Notifications,
		NotificationQueueDepth,
		LineWebhookEvents,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
