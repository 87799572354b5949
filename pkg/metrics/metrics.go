// Package metrics holds the Prometheus collectors for the wagering engine and its HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics
var (
	BetsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aura_bets_created_total",
		Help: "Bets opened",
	})

	StakesPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aura_stakes_placed_total",
		Help: "Stakes placed, by side",
	}, []string{"side"})

	AuraStaked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aura_staked_total",
		Help: "Aura debited into bet pools",
	})

	BetsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aura_bets_resolved_total",
		Help: "Bets resolved, by outcome",
	}, []string{"outcome"})

	AuraPaidOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aura_paid_out_total",
		Help: "Aura credited on resolution, by transaction type",
	}, []string{"type"})

	PayoutRemainder = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aura_payout_remainder_total",
		Help: "Aura left undistributed by floor division",
	})

	ConflictRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aura_conflict_retries_total",
		Help: "Optimistic-lock retries, by operation",
	}, []string{"operation"})

	BetsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aura_bets_expired_total",
		Help: "Bets expired by the sweeper",
	})
)

// HTTP metrics
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aura_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aura_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})
)
