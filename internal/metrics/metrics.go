// Package metrics defines Prometheus metrics for slot-alerter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "slot_alerter"

// Check cycle metrics.
var (
	ChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_total",
		Help:      "Total number of per-location availability checks.",
	})

	CheckErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "check_errors_total",
		Help:      "Total number of failed availability checks.",
	})

	CheckCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "check_cycle_duration_seconds",
		Help:      "Duration of full check cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	SlotsObservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slots_observed_total",
		Help:      "Total number of open slots observed across all checks.",
	})

	NewSlotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "new_slots_total",
		Help:      "Total number of slots seen for the first time.",
	})
)

// Scheduler API metrics.
var (
	SchedulerAPICallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_api_calls_total",
		Help:      "Total cumulative TTP scheduler API calls.",
	})

	SchedulerAPIDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_api_daily_usage",
		Help:      "Current daily scheduler API call count within the rolling 24-hour window.",
	})

	SchedulerAPIDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_api_daily_limit_hits_total",
		Help:      "Total number of times the daily scheduler API limit was reached.",
	})
)

// Alert metrics.
var (
	AlertsFiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_fired_total",
		Help:      "Total number of slot alerts fired.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)

// Store metrics.
var (
	SeenSlotsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seen_slots_pruned_total",
		Help:      "Total number of expired seen-slot entries pruned.",
	})
)

// Scheduler metrics.
var (
	SchedulerNextCheckTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_check_timestamp_seconds",
		Help:      "Unix timestamp of the next scheduled check cycle.",
	})
)
