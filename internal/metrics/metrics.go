package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authorization metrics
var (
	// PermissionChecksTotal tracks permission gate decisions by check and outcome.
	PermissionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_checks_total",
			Help: "Total number of permission gate decisions by check and outcome",
		},
		[]string{"check", "outcome"}, // outcome: "allowed", "denied", "unauthenticated", "error"
	)

	// RoleResolutionsTotal tracks role resolutions by resolved role.
	RoleResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "role_resolutions_total",
			Help: "Total number of board role resolutions by resolved role",
		},
		[]string{"role"},
	)
)

// Membership metrics
var (
	// MembershipChangesTotal tracks membership mutations by action.
	MembershipChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_changes_total",
			Help: "Total number of membership mutations by action",
		},
		[]string{"action"}, // action: "invited", "role_changed", "removed"
	)

	// MembershipRoleConflictsTotal tracks role changes lost to concurrent writers.
	MembershipRoleConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_role_conflicts_total",
			Help: "Total number of role changes rejected because the expected role no longer matched",
		},
	)
)

// Invite link metrics
var (
	// InviteRedemptionsTotal tracks invite link redemptions by outcome.
	InviteRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_redemptions_total",
			Help: "Total number of invite link redemption attempts by outcome",
		},
		[]string{"outcome"}, // outcome: "joined", "already_member", "revoked", "expired", "not_found", "rate_limited"
	)

	// InviteLinksActive tracks currently active invite links.
	InviteLinksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "invite_links_active",
			Help: "Number of currently active invite links",
		},
	)

	// InviteLinksSweptTotal tracks links deactivated by the expiry sweeper.
	InviteLinksSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_links_swept_total",
			Help: "Total number of expired invite links deactivated by the sweeper",
		},
	)
)

// Batch mutation metrics
var (
	// CardBatchesTotal tracks batch card updates by outcome.
	CardBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_batches_total",
			Help: "Total number of batch card updates by outcome",
		},
		[]string{"outcome"}, // outcome: "applied", "rejected", "error"
	)

	// CardBatchSize tracks the number of cards per batch.
	CardBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "card_batch_size",
			Help:    "Number of cards per batch update",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	// CardBatchDuration tracks batch transaction duration.
	CardBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "card_batch_duration_seconds",
			Help:    "Batch card update transaction duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

// Activity event metrics
var (
	// ActivityEventsTotal tracks recorded membership activity events.
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_total",
			Help: "Total number of recorded membership activity events by action",
		},
		[]string{"action"},
	)

	// ActivityEventsDroppedTotal tracks events that could not be enqueued.
	ActivityEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_dropped_total",
			Help: "Total number of activity events dropped because enqueueing failed",
		},
	)
)
