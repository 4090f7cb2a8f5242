// Package state manages per-user conversation state for the guided flows.
package state

import "context"

// Storage defines the persistence contract for conversation state. The only
// shipped implementation is in-memory; everything is volatile by design and
// lost on restart.
type Storage interface {
	// Get returns the active conversation for the user.
	Get(ctx context.Context, userID string) (*Conversation, error)
	// Set saves the conversation for the user.
	Set(ctx context.Context, userID string, conv *Conversation) error
	// Clear removes the conversation for the user.
	Clear(ctx context.Context, userID string) error
	// All returns every active conversation.
	All(ctx context.Context) ([]*Conversation, error)
}
