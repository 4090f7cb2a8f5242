// Package market holds the shared mock bonding-curve state. A single curve
// maps cumulative volume sold to price for every ticker; per-asset curves are
// deliberately out of scope.
package market

import (
	"log/slog"
	"math"
	"sync"
)

const (
	// DefaultBasePrice is the price in SOL at zero cumulative volume.
	DefaultBasePrice = 0.0001
	// DefaultScale controls how fast the curve steepens with volume.
	DefaultScale = 1e7
	// DefaultFlatTokensPerSol is the fallback conversion used only when the
	// configured base price is degenerate (zero).
	DefaultFlatTokensPerSol = 1000
)

// BuyResult captures the outcome of a single buy executed against the curve.
type BuyResult struct {
	Tokens      int64
	PriceBefore float64
	PriceAfter  float64
}

// SellResult captures the outcome of a single sell executed against the curve.
type SellResult struct {
	SolReturned float64
	PriceBefore float64
	PriceAfter  float64
}

// Model is the process-wide price/volume state. All reads and writes go
// through one mutex so concurrent trades cannot interleave their
// read-modify-write of the cumulative volume counter.
type Model struct {
	mu               sync.Mutex
	basePrice        float64
	scale            float64
	flatTokensPerSol float64
	volume           int64

	log *slog.Logger
}

// Option customizes a Model.
type Option func(*Model)

// WithBasePrice overrides the base price.
func WithBasePrice(p float64) Option {
	return func(m *Model) { m.basePrice = p }
}

// WithScale overrides the curve scale.
func WithScale(s float64) Option {
	return func(m *Model) {
		if s > 0 {
			m.scale = s
		}
	}
}

// WithFlatTokensPerSol overrides the degenerate-price fallback rate.
func WithFlatTokensPerSol(r float64) Option {
	return func(m *Model) {
		if r > 0 {
			m.flatTokensPerSol = r
		}
	}
}

// NewModel creates a bonding-curve model with zero cumulative volume.
func NewModel(log *slog.Logger, opts ...Option) *Model {
	if log == nil {
		log = slog.Default()
	}

	m := &Model{
		basePrice:        DefaultBasePrice,
		scale:            DefaultScale,
		flatTokensPerSol: DefaultFlatTokensPerSol,
		log:              log,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CurrentPrice returns the shared curve price. The ticker argument exists for
// interface symmetry: every ticker trades on the same curve.
func (m *Model) CurrentPrice(ticker string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceLocked()
}

// CumulativeVolume returns the total volume sold across all tickers.
func (m *Model) CumulativeVolume() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// BasePrice returns the configured floor price of the curve.
func (m *Model) BasePrice() float64 {
	return m.basePrice
}

// ExecuteBuy converts a SOL amount into tokens at the pre-trade price and
// advances the cumulative volume by the tokens received. The price read and
// the volume update happen under one lock so price impact applies only to the
// next trade, never the current one.
func (m *Model) ExecuteBuy(solAmount float64) BuyResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	priceBefore := m.priceLocked()

	var tokens int64
	if priceBefore > 0 {
		tokens = int64(math.Floor(solAmount / priceBefore))
	} else {
		// Degenerate curve: fall back to a flat conversion rate.
		tokens = int64(math.Floor(solAmount * m.flatTokensPerSol))
	}

	if tokens > 0 {
		m.volume += tokens
	}

	return BuyResult{
		Tokens:      tokens,
		PriceBefore: priceBefore,
		PriceAfter:  m.priceLocked(),
	}
}

// ExecuteSell values a token quantity at the pre-trade price and walks the
// cumulative volume back down, floored at zero.
func (m *Model) ExecuteSell(quantity int64) SellResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	priceBefore := m.priceLocked()

	m.volume -= quantity
	if m.volume < 0 {
		m.volume = 0
	}

	return SellResult{
		SolReturned: float64(quantity) * priceBefore,
		PriceBefore: priceBefore,
		PriceAfter:  m.priceLocked(),
	}
}

// RecordLaunchSeed advances the curve by one percent of a freshly launched
// supply. This models an initial seed sale; it is a simplification, not a
// real trade.
func (m *Model) RecordLaunchSeed(supply int64) {
	seed := supply / 100
	if seed <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume += seed
	m.log.Debug("launch seed recorded", slog.Int64("seed", seed), slog.Int64("cumulative_volume", m.volume))
}

func (m *Model) priceLocked() float64 {
	return m.basePrice * (1 + float64(m.volume)/m.scale)
}
