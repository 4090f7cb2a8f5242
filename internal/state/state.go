package state

import "time"

// State represents a finite-state machine state. A user with no stored
// conversation is implicitly idle; an entry exists only while a guided flow
// is in progress.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next user command.
	StateIdle State = "idle"

	// Launch flow steps, in collection order.
	StateLaunchName        State = "launch_name"
	StateLaunchTicker      State = "launch_ticker"
	StateLaunchSupply      State = "launch_supply"
	StateLaunchLiquidity   State = "launch_liquidity"
	StateLaunchDescription State = "launch_description"
	StateLaunchCommunity   State = "launch_community"
	StateLaunchConfirm     State = "launch_confirm"

	// Buy flow steps.
	StateBuyTicker State = "buy_ticker"
	StateBuyAmount State = "buy_amount"
)

// AllStates lists every FSM state, used by the metrics collector.
var AllStates = []State{
	StateIdle,
	StateLaunchName,
	StateLaunchTicker,
	StateLaunchSupply,
	StateLaunchLiquidity,
	StateLaunchDescription,
	StateLaunchCommunity,
	StateLaunchConfirm,
	StateBuyTicker,
	StateBuyAmount,
}

// LaunchDraft accumulates the fields collected by the launch flow.
type LaunchDraft struct {
	Name        string  `json:"name"`
	Ticker      string  `json:"ticker"`
	Supply      int64   `json:"supply"`
	Liquidity   float64 `json:"liquidity"`
	Description string  `json:"description"`
	Community   string  `json:"community"`
}

// BuyDraft accumulates the fields collected by the buy flow.
type BuyDraft struct {
	Ticker string `json:"ticker"`
}

// Conversation captures the active flow for a user: the current step plus
// the typed draft for that flow. Exactly one of Launch/Buy is non-nil while
// the corresponding flow is active.
type Conversation struct {
	UserID       string       `json:"user_id"`
	CurrentState State        `json:"current_state"`
	Launch       *LaunchDraft `json:"launch,omitempty"`
	Buy          *BuyDraft    `json:"buy,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate drafts without aliasing
// stored state.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}

	cp := *c
	if c.Launch != nil {
		launch := *c.Launch
		cp.Launch = &launch
	}
	if c.Buy != nil {
		buy := *c.Buy
		cp.Buy = &buy
	}

	return &cp
}
