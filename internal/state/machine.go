package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrStateNotFound indicates that a conversation record does not exist.
	ErrStateNotFound = errors.New("conversation not found")
	// ErrInvalidConversation indicates a nil or malformed conversation record.
	ErrInvalidConversation = errors.New("invalid conversation")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// keyedMutex hands out one mutex per key so updates for the same user
// serialize without a global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}

	return m
}

// Machine is the FSM controller: it validates transitions against the
// transition table and guards each user's state with a per-user lock.
type Machine struct {
	storage Storage
	locks   *keyedMutex
	log     *slog.Logger
}

// NewMachine creates an FSM controller over the provided storage backend.
func NewMachine(storage Storage, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		storage: storage,
		locks:   newKeyedMutex(),
		log:     log,
	}
}

// Get returns the active conversation for the user.
func (m *Machine) Get(ctx context.Context, userID string) (*Conversation, error) {
	return m.storage.Get(ctx, userID)
}

// All returns every active conversation.
func (m *Machine) All(ctx context.Context) ([]*Conversation, error) {
	return m.storage.All(ctx)
}

// Put saves the conversation without changing its step, used for draft
// updates after a re-prompt or mid-step field collection.
func (m *Machine) Put(ctx context.Context, conv *Conversation) error {
	if conv == nil || conv.UserID == "" {
		return ErrInvalidConversation
	}

	lock := m.locks.get(conv.UserID)
	lock.Lock()
	defer lock.Unlock()

	return m.storage.Set(ctx, conv.UserID, conv)
}

// Transition moves the conversation to the next state if the transition
// table allows it, then persists the updated record.
func (m *Machine) Transition(ctx context.Context, conv *Conversation, next State) error {
	if conv == nil || conv.UserID == "" {
		return ErrInvalidConversation
	}

	lock := m.locks.get(conv.UserID)
	lock.Lock()
	defer lock.Unlock()

	current := conv.CurrentState
	if current == "" {
		current = StateIdle
	}

	if !IsTransitionAllowed(current, next) {
		m.log.Warn("invalid state transition",
			slog.String("user_id", conv.UserID),
			slog.String("from", string(current)),
			slog.String("to", string(next)),
		)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	transitionRecorder(string(current), string(next))

	conv.CurrentState = next
	return m.storage.Set(ctx, conv.UserID, conv)
}

// Begin starts a flow for an idle user. It fails when a conversation record
// already exists: at most one flow is active per user.
func (m *Machine) Begin(ctx context.Context, userID string, first State, conv *Conversation) error {
	if conv == nil {
		return ErrInvalidConversation
	}

	lock := m.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.storage.Get(ctx, userID); err == nil {
		return fmt.Errorf("%w: flow already active", ErrInvalidTransition)
	} else if !errors.Is(err, ErrStateNotFound) {
		return err
	}

	if !IsTransitionAllowed(StateIdle, first) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, StateIdle, first)
	}

	transitionRecorder(string(StateIdle), string(first))

	conv.UserID = userID
	conv.CurrentState = first
	return m.storage.Set(ctx, userID, conv)
}

// Clear ends the conversation, returning the user to the implicit idle state.
func (m *Machine) Clear(ctx context.Context, userID string) error {
	lock := m.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := m.storage.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil
		}
		return err
	}

	transitionRecorder(string(conv.CurrentState), string(StateIdle))

	return m.storage.Clear(ctx, userID)
}
