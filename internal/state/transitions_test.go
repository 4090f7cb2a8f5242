package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"idle to launch start", StateIdle, StateLaunchName, true},
		{"idle to buy start", StateIdle, StateBuyTicker, true},
		{"idle cannot jump mid-flow", StateIdle, StateLaunchSupply, false},
		{"launch steps advance in order", StateLaunchName, StateLaunchTicker, true},
		{"launch cannot skip a step", StateLaunchName, StateLaunchSupply, false},
		{"launch cannot go backwards", StateLaunchSupply, StateLaunchTicker, false},
		{"community leads to confirm", StateLaunchCommunity, StateLaunchConfirm, true},
		{"confirm only exits to idle", StateLaunchConfirm, StateIdle, true},
		{"confirm cannot restart", StateLaunchConfirm, StateLaunchName, false},
		{"buy ticker to amount", StateBuyTicker, StateBuyAmount, true},
		{"buy amount completes to idle", StateBuyAmount, StateIdle, true},
		{"any state may cancel to idle", StateLaunchLiquidity, StateIdle, true},
		{"re-prompt keeps the same step", StateLaunchSupply, StateLaunchSupply, true},
		{"launch flow cannot cross into buy flow", StateLaunchName, StateBuyTicker, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransitionAllowed(tc.from, tc.to))
		})
	}
}
