// Package metrics exposes Prometheus instrumentation for the bot.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dev-abubakarsharif/chatdotfun/internal/state"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total number of inbound messages labeled by resolved command and status",
		},
		[]string{"command", "status"},
	)
	messageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_duration_seconds",
			Help:    "Duration of message handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of FSM transitions",
		},
		[]string{"from", "to"},
	)
	tradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trades_total",
			Help: "Total number of trades labeled by side and status",
		},
		[]string{"side", "status"},
	)
	walletsImported = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallets_imported",
			Help: "Current number of imported wallets",
		},
	)
	marketCumulativeVolume = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_cumulative_volume",
			Help: "Cumulative volume sold on the shared bonding curve",
		},
	)
	marketPrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_price_sol",
			Help: "Current shared curve price in SOL",
		},
	)
	usersByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_state",
			Help: "Number of users per FSM state",
		},
		[]string{"state"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordMessage increments message counters and records handling duration.
func RecordMessage(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	messagesTotal.WithLabelValues(command, status).Inc()
	messageDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStateTransition tracks FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordTrade increments the trade counter for a side/status pair.
func RecordTrade(side, status string) {
	if side == "" {
		side = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	tradesTotal.WithLabelValues(side, status).Inc()
}

// SetWalletCount updates the imported-wallet gauge.
func SetWalletCount(count int) {
	walletsImported.Set(float64(count))
}

// SetMarketState updates the market volume and price gauges.
func SetMarketState(cumulativeVolume int64, price float64) {
	marketCumulativeVolume.Set(float64(cumulativeVolume))
	marketPrice.Set(price)
}

// SetUsersByState updates the gauge for the given state.
func SetUsersByState(st string, count int) {
	if st == "" {
		st = "unknown"
	}

	usersByState.WithLabelValues(st).Set(float64(count))
}

// StateCollector periodically gathers FSM state counts and emits gauge metrics.
type StateCollector struct {
	fsm *state.Machine
	log *slog.Logger
}

// NewStateCollector builds a metrics collector bound to the provided FSM.
func NewStateCollector(fsm *state.Machine, log *slog.Logger) *StateCollector {
	if log == nil {
		log = slog.Default()
	}

	return &StateCollector{fsm: fsm, log: log}
}

// Run polls the FSM every 10 seconds, updating per-state gauges until ctx is
// cancelled. Users without a conversation record are idle and not counted.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) {
	conversations, err := c.fsm.All(ctx)
	if err != nil {
		c.log.Error("failed to collect conversation states", slog.Any("error", err))
		return
	}

	counts := make(map[state.State]int, len(state.AllStates))
	for _, conv := range conversations {
		counts[conv.CurrentState]++
	}

	for _, st := range state.AllStates {
		SetUsersByState(string(st), counts[st])
	}
}
