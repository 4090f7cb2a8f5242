// Package domain contains the core entities shared across the bot.
package domain

import "time"

// Wallet is an imported Solana-style key pair kept for the process lifetime.
// SecretKey is the raw 64-byte Ed25519 secret; it never leaves the process
// and is excluded from any serialized form.
type Wallet struct {
	Owner      string    `json:"owner"`
	PublicKey  string    `json:"public_key"`
	SecretKey  []byte    `json:"-"`
	ImportedAt time.Time `json:"imported_at"`
}
