// Package wallet keeps the imported key pair for each user. A wallet on file
// is the gate for every other bot action.
package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"github.com/dev-abubakarsharif/chatdotfun/internal/domain"
)

var (
	// ErrInvalidFormat indicates the key material could not be decoded into a
	// valid Ed25519 key pair.
	ErrInvalidFormat = errors.New("key material is not a valid secret key")
	// ErrNotFound indicates no wallet is on file for the user.
	ErrNotFound = errors.New("wallet not found")
)

// Registry maps a user identifier to their imported wallet. Entries live for
// the process lifetime and are never deleted; a re-import overwrites.
type Registry struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
	log     *slog.Logger
}

// NewRegistry creates an empty wallet registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		wallets: make(map[string]*domain.Wallet),
		log:     log,
	}
}

// Import parses raw key material and stores the resulting wallet for the
// user, overwriting any prior wallet. A parse or validation failure leaves
// the registry untouched.
func (r *Registry) Import(_ context.Context, user, rawKeyMaterial string) (*domain.Wallet, error) {
	secret, err := ParseSecretKey(rawKeyMaterial)
	if err != nil {
		return nil, err
	}

	pub := secret.Public().(ed25519.PublicKey)
	w := &domain.Wallet{
		Owner:      user,
		PublicKey:  base58.Encode(pub),
		SecretKey:  append([]byte(nil), secret...),
		ImportedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.wallets[user] = w
	r.mu.Unlock()

	r.log.Info("wallet imported", slog.String("user", user), slog.String("public_key", w.PublicKey))

	cp := *w
	return &cp, nil
}

// Get returns the wallet on file for the user, or ErrNotFound.
func (r *Registry) Get(_ context.Context, user string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[user]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *w
	return &cp, nil
}

// Has reports whether a wallet is on file for the user.
func (r *Registry) Has(ctx context.Context, user string) bool {
	_, err := r.Get(ctx, user)
	return err == nil
}

// Count returns the number of imported wallets, used by the metrics collector.
func (r *Registry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}
