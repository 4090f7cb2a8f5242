// Package token records launched tokens. A ticker is claimed exactly once;
// records are immutable after launch.
package token

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dev-abubakarsharif/chatdotfun/internal/domain"
	"github.com/dev-abubakarsharif/chatdotfun/internal/market"
)

const (
	// MaxSupply is the upper bound on a launched token's supply.
	MaxSupply int64 = 1_000_000_000
	// MinLiquidity is the minimum initial liquidity in SOL.
	MinLiquidity = 0.5
)

var (
	// ErrInvalidTicker indicates the ticker does not match the 1-8 character
	// uppercase alphanumeric format.
	ErrInvalidTicker = errors.New("invalid ticker symbol")
	// ErrDuplicateTicker indicates the ticker has already been launched.
	ErrDuplicateTicker = errors.New("ticker already launched")
	// ErrInvalidSupply indicates the supply is outside (0, 1e9].
	ErrInvalidSupply = errors.New("supply must be a positive integer up to 1,000,000,000")
	// ErrInvalidLiquidity indicates the liquidity is below the minimum.
	ErrInvalidLiquidity = errors.New("liquidity must be at least 0.5 SOL")
	// ErrNotFound indicates no token exists for the ticker.
	ErrNotFound = errors.New("token not found")
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)

// NormalizeTicker strips a leading $ marker, uppercases the symbol, and
// validates the result against the ticker format.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	ticker = strings.TrimPrefix(ticker, "$")

	if !tickerPattern.MatchString(ticker) {
		return "", ErrInvalidTicker
	}

	return ticker, nil
}

// LaunchParams carries the fields collected by the launch flow.
type LaunchParams struct {
	Ticker      string
	Name        string
	Supply      int64
	Liquidity   float64
	Description string
	Community   string
	Owner       string
}

// Registry holds every launched token keyed by ticker.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]*domain.LaunchedToken
	market *market.Model
	log    *slog.Logger
}

// NewRegistry creates an empty token registry bound to the shared market.
func NewRegistry(m *market.Model, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		tokens: make(map[string]*domain.LaunchedToken),
		market: m,
		log:    log,
	}
}

// Launch validates the parameters in a fixed order (ticker format, ticker
// uniqueness, supply, liquidity) and inserts the token. On success the shared
// market advances by one percent of supply, modeling an initial seed sale.
// Any validation failure leaves the registry untouched.
func (r *Registry) Launch(_ context.Context, params LaunchParams) (*domain.LaunchedToken, error) {
	ticker, err := NormalizeTicker(params.Ticker)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[ticker]; exists {
		return nil, ErrDuplicateTicker
	}

	if params.Supply <= 0 || params.Supply > MaxSupply {
		return nil, ErrInvalidSupply
	}

	if params.Liquidity < MinLiquidity {
		return nil, ErrInvalidLiquidity
	}

	tok := &domain.LaunchedToken{
		Ticker:      ticker,
		Name:        params.Name,
		Supply:      params.Supply,
		Liquidity:   params.Liquidity,
		Description: params.Description,
		Community:   params.Community,
		Owner:       params.Owner,
		CreatedAt:   time.Now().UTC(),
	}
	r.tokens[ticker] = tok

	if r.market != nil {
		r.market.RecordLaunchSeed(tok.Supply)
	}

	r.log.Info("token launched",
		slog.String("ticker", tok.Ticker),
		slog.Int64("supply", tok.Supply),
		slog.Float64("liquidity", tok.Liquidity),
	)

	cp := *tok
	return &cp, nil
}

// Get returns the launched token for a normalized or raw ticker.
func (r *Registry) Get(_ context.Context, raw string) (*domain.LaunchedToken, error) {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, ok := r.tokens[ticker]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *tok
	return &cp, nil
}

// Exists reports whether the ticker has been launched.
func (r *Registry) Exists(ctx context.Context, raw string) bool {
	_, err := r.Get(ctx, raw)
	return err == nil
}

// List returns all launched tokens, newest first. This backs the trending
// view.
func (r *Registry) List(_ context.Context) []*domain.LaunchedToken {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.LaunchedToken, 0, len(r.tokens))
	for _, tok := range r.tokens {
		cp := *tok
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}
