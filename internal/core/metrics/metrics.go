// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"socialdesk/internal/domain"
)

var (
	FriendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "friend_requests_total", Help: "Friend request sends by outcome"},
		[]string{"outcome"},
	)
	FriendResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "friend_responses_total", Help: "Friend request responses by outcome"},
		[]string{"outcome"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_emitted_total", Help: "Notification records written by type"},
		[]string{"type"},
	)
	StatsRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statistics_refresh_total", Help: "Statistics snapshot recomputations by trigger"},
		[]string{"trigger"},
	)
	AdminAuth = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "admin_auth_total", Help: "Admin credential checks by operation and outcome"},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(FriendRequests, FriendResponses, Notifications, StatsRefresh, AdminAuth)
}

// Outcome turns an operation result into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSelfReference):
		return "self_reference"
	case errors.Is(err, domain.ErrAlreadyFriends):
		return "already_friends"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate_request"
	case errors.Is(err, domain.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	}
	return "error"
}
