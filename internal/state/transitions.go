package state

// validTransitions contains the permitted forward transitions in the FSM.
// Returning to StateIdle (flow completion or cancellation) is always allowed,
// as is re-saving the current step after invalid input.
var validTransitions = map[State][]State{
	StateIdle: {
		StateLaunchName,
		StateBuyTicker,
	},
	StateLaunchName: {
		StateLaunchTicker,
	},
	StateLaunchTicker: {
		StateLaunchSupply,
	},
	StateLaunchSupply: {
		StateLaunchLiquidity,
	},
	StateLaunchLiquidity: {
		StateLaunchDescription,
	},
	StateLaunchDescription: {
		StateLaunchCommunity,
	},
	StateLaunchCommunity: {
		StateLaunchConfirm,
	},
	StateLaunchConfirm: {},
	StateBuyTicker: {
		StateBuyAmount,
	},
	StateBuyAmount: {},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle || to == from {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, next := range allowed {
		if next == to {
			return true
		}
	}

	return false
}
