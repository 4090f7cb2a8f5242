// Package portfolio tracks per-user holdings and orchestrates trades against
// the shared market curve.
package portfolio

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/dev-abubakarsharif/chatdotfun/internal/domain"
	"github.com/dev-abubakarsharif/chatdotfun/internal/market"
	"github.com/dev-abubakarsharif/chatdotfun/internal/token"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/metrics"
)

var (
	// ErrUnknownTicker indicates the ticker has not been launched.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrInvalidAmount indicates a non-positive trade amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientHoldings indicates a sell for more than the user holds.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// BuyResult reports a completed buy.
type BuyResult struct {
	Ticker         string
	TokensReceived int64
	PriceBefore    float64
	PriceAfter     float64
}

// SellResult reports a completed sell.
type SellResult struct {
	Ticker      string
	SolReturned float64
	PriceBefore float64
	PriceAfter  float64
}

// Ledger maps (user, ticker) to held quantity. Holdings are created lazily on
// first buy and are never allowed below zero: an oversized sell is rejected,
// not clamped.
type Ledger struct {
	mu       sync.RWMutex
	holdings map[string]map[string]int64

	tokens *token.Registry
	market *market.Model
	log    *slog.Logger
}

// NewLedger creates an empty ledger bound to the token registry and market.
func NewLedger(tokens *token.Registry, m *market.Model, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}

	return &Ledger{
		holdings: make(map[string]map[string]int64),
		tokens:   tokens,
		market:   m,
		log:      log,
	}
}

// Buy converts solAmount into tokens at the pre-trade curve price and credits
// the user's position. The tokens received equal floor(solAmount / price
// before the trade); the volume update lands after the price read, so price
// impact reaches only the next trade.
func (l *Ledger) Buy(ctx context.Context, user, rawTicker string, solAmount float64) (*BuyResult, error) {
	ticker, err := token.NormalizeTicker(rawTicker)
	if err != nil || !l.tokens.Exists(ctx, ticker) {
		metrics.RecordTrade("buy", "unknown_ticker")
		return nil, ErrUnknownTicker
	}

	if solAmount <= 0 {
		metrics.RecordTrade("buy", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	exec := l.market.ExecuteBuy(solAmount)

	l.mu.Lock()
	userHoldings, ok := l.holdings[user]
	if !ok {
		userHoldings = make(map[string]int64)
		l.holdings[user] = userHoldings
	}
	userHoldings[ticker] += exec.Tokens
	l.mu.Unlock()

	metrics.RecordTrade("buy", "ok")
	metrics.SetMarketState(l.market.CumulativeVolume(), exec.PriceAfter)

	l.log.Info("buy executed",
		slog.String("user", user),
		slog.String("ticker", ticker),
		slog.Float64("sol_amount", solAmount),
		slog.Int64("tokens", exec.Tokens),
		slog.Float64("price_before", exec.PriceBefore),
	)

	return &BuyResult{
		Ticker:         ticker,
		TokensReceived: exec.Tokens,
		PriceBefore:    exec.PriceBefore,
		PriceAfter:     exec.PriceAfter,
	}, nil
}

// Sell debits quantity tokens from the user's position and returns their SOL
// value at the pre-trade price. Fails without side effects when the user does
// not hold enough.
func (l *Ledger) Sell(ctx context.Context, user, rawTicker string, quantity int64) (*SellResult, error) {
	ticker, err := token.NormalizeTicker(rawTicker)
	if err != nil || !l.tokens.Exists(ctx, ticker) {
		metrics.RecordTrade("sell", "unknown_ticker")
		return nil, ErrUnknownTicker
	}

	if quantity <= 0 {
		metrics.RecordTrade("sell", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	held := l.holdings[user][ticker]
	if held < quantity {
		l.mu.Unlock()
		metrics.RecordTrade("sell", "insufficient_holdings")
		return nil, ErrInsufficientHoldings
	}
	l.holdings[user][ticker] = held - quantity
	l.mu.Unlock()

	exec := l.market.ExecuteSell(quantity)

	metrics.RecordTrade("sell", "ok")
	metrics.SetMarketState(l.market.CumulativeVolume(), exec.PriceAfter)

	l.log.Info("sell executed",
		slog.String("user", user),
		slog.String("ticker", ticker),
		slog.Int64("quantity", quantity),
		slog.Float64("sol_returned", exec.SolReturned),
	)

	return &SellResult{
		Ticker:      ticker,
		SolReturned: exec.SolReturned,
		PriceBefore: exec.PriceBefore,
		PriceAfter:  exec.PriceAfter,
	}, nil
}

// Quantity returns the user's held quantity for a ticker (zero when absent).
func (l *Ledger) Quantity(_ context.Context, user, ticker string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.holdings[user][ticker]
}

// Holdings returns the user's non-zero positions sorted by ticker.
func (l *Ledger) Holdings(_ context.Context, user string) []domain.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Holding, 0, len(l.holdings[user]))
	for ticker, qty := range l.holdings[user] {
		if qty <= 0 {
			continue
		}
		out = append(out, domain.Holding{Ticker: ticker, Quantity: qty})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
