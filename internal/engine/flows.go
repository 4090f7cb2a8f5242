package engine

import (
	"context"
	stdErrors "errors"
	"strings"

	apperrors "github.com/dev-abubakarsharif/chatdotfun/internal/errors"
	"github.com/dev-abubakarsharif/chatdotfun/internal/portfolio"
	"github.com/dev-abubakarsharif/chatdotfun/internal/state"
	"github.com/dev-abubakarsharif/chatdotfun/internal/token"
)

func (e *Engine) startLaunchFlow(ctx context.Context, senderID string) (string, error) {
	conv := &state.Conversation{Launch: &state.LaunchDraft{}}
	if err := e.fsm.Begin(ctx, senderID, state.StateLaunchName, conv); err != nil {
		return "", apperrors.NewStateError("begin launch flow", err)
	}
	return promptLaunchName, nil
}

func (e *Engine) startBuyFlow(ctx context.Context, senderID string) (string, error) {
	if len(e.tokens.List(ctx)) == 0 {
		return replyNoTokensYet, nil
	}

	conv := &state.Conversation{Buy: &state.BuyDraft{}}
	if err := e.fsm.Begin(ctx, senderID, state.StateBuyTicker, conv); err != nil {
		return "", apperrors.NewStateError("begin buy flow", err)
	}
	return promptBuyTicker, nil
}

// handleFlowStep feeds the message to the current step of the active flow.
// While a flow is active the next message always lands here; commands are not
// recognized mid-flow.
func (e *Engine) handleFlowStep(ctx context.Context, senderID string, conv *state.Conversation, text string) (string, error) {
	switch conv.CurrentState {
	case state.StateLaunchName,
		state.StateLaunchTicker,
		state.StateLaunchSupply,
		state.StateLaunchLiquidity,
		state.StateLaunchDescription,
		state.StateLaunchCommunity,
		state.StateLaunchConfirm:
		return e.handleLaunchStep(ctx, senderID, conv, text)

	case state.StateBuyTicker, state.StateBuyAmount:
		return e.handleBuyStep(ctx, senderID, conv, text)
	}

	// Unknown step: drop the broken conversation and start over.
	if err := e.fsm.Clear(ctx, senderID); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return mainMenu(), nil
}

// handleLaunchStep collects the launch fields in fixed order. Invalid input
// re-prompts the same step without advancing.
func (e *Engine) handleLaunchStep(ctx context.Context, senderID string, conv *state.Conversation, text string) (string, error) {
	if conv.Launch == nil {
		conv.Launch = &state.LaunchDraft{}
	}
	draft := conv.Launch

	switch conv.CurrentState {
	case state.StateLaunchName:
		if text == "" {
			return replyNeedText, nil
		}
		draft.Name = text
		return e.advanceLaunch(ctx, conv, state.StateLaunchTicker, promptLaunchTicker)

	case state.StateLaunchTicker:
		ticker, err := token.NormalizeTicker(text)
		if err != nil {
			return replyInvalidTicker, nil
		}
		if e.tokens.Exists(ctx, ticker) {
			return replyTickerTaken, nil
		}
		draft.Ticker = ticker
		return e.advanceLaunch(ctx, conv, state.StateLaunchSupply, promptLaunchSupply)

	case state.StateLaunchSupply:
		supply, err := parseSupply(text)
		if err != nil || supply <= 0 || supply > token.MaxSupply {
			return replyInvalidSupply, nil
		}
		draft.Supply = supply
		return e.advanceLaunch(ctx, conv, state.StateLaunchLiquidity, promptLaunchLiquidity)

	case state.StateLaunchLiquidity:
		liquidity, err := parseSolAmount(text)
		if err != nil || liquidity < token.MinLiquidity {
			return replyInvalidLiquidity, nil
		}
		draft.Liquidity = liquidity
		return e.advanceLaunch(ctx, conv, state.StateLaunchDescription, promptLaunchDescription)

	case state.StateLaunchDescription:
		if text == "" {
			return replyNeedText, nil
		}
		draft.Description = text
		return e.advanceLaunch(ctx, conv, state.StateLaunchCommunity, promptLaunchCommunity)

	case state.StateLaunchCommunity:
		if text == "" {
			return replyNeedText, nil
		}
		draft.Community = text
		summary := launchSummary(launchDetails{
			Name:        draft.Name,
			Ticker:      draft.Ticker,
			Supply:      draft.Supply,
			Liquidity:   draft.Liquidity,
			Description: draft.Description,
			Community:   draft.Community,
		})
		return e.advanceLaunch(ctx, conv, state.StateLaunchConfirm, summary)

	case state.StateLaunchConfirm:
		return e.handleLaunchConfirm(ctx, senderID, draft, text)
	}

	return mainMenu(), nil
}

func (e *Engine) advanceLaunch(ctx context.Context, conv *state.Conversation, next state.State, prompt string) (string, error) {
	if err := e.fsm.Transition(ctx, conv, next); err != nil {
		return "", apperrors.NewStateError("advance launch flow", err)
	}
	return prompt, nil
}

func (e *Engine) handleLaunchConfirm(ctx context.Context, senderID string, draft *state.LaunchDraft, text string) (string, error) {
	word := strings.ToLower(strings.TrimSpace(text))

	switch {
	case cancelTokens[word]:
		if err := e.fsm.Clear(ctx, senderID); err != nil {
			return "", apperrors.NewInternalError(err)
		}
		return replyLaunchCancelled, nil

	case acceptTokens[word]:
		// fall through to the launch below
	default:
		return promptLaunchConfirmHint, nil
	}

	owner := senderID
	if w, err := e.wallets.Get(ctx, senderID); err == nil {
		owner = w.PublicKey
	}

	tok, launchErr := e.tokens.Launch(ctx, token.LaunchParams{
		Ticker:      draft.Ticker,
		Name:        draft.Name,
		Supply:      draft.Supply,
		Liquidity:   draft.Liquidity,
		Description: draft.Description,
		Community:   draft.Community,
		Owner:       owner,
	})

	// The flow is done either way; a failed launch leaves no partial token.
	if err := e.fsm.Clear(ctx, senderID); err != nil {
		return "", apperrors.NewInternalError(err)
	}

	if launchErr != nil {
		return launchErrorReply(launchErr), nil
	}

	return replyLaunched(tok, e.market.CurrentPrice(tok.Ticker)), nil
}

func launchErrorReply(err error) string {
	switch {
	case stdErrors.Is(err, token.ErrInvalidTicker):
		return replyInvalidTicker
	case stdErrors.Is(err, token.ErrDuplicateTicker):
		return replyTickerTaken
	case stdErrors.Is(err, token.ErrInvalidSupply):
		return replyInvalidSupply
	case stdErrors.Is(err, token.ErrInvalidLiquidity):
		return replyInvalidLiquidity
	}
	return replyLaunchCancelled
}

// handleBuyStep runs the guided buy dialog: ticker, then SOL amount.
func (e *Engine) handleBuyStep(ctx context.Context, senderID string, conv *state.Conversation, text string) (string, error) {
	if conv.Buy == nil {
		conv.Buy = &state.BuyDraft{}
	}
	draft := conv.Buy

	switch conv.CurrentState {
	case state.StateBuyTicker:
		ticker, err := token.NormalizeTicker(text)
		if err != nil || !e.tokens.Exists(ctx, ticker) {
			return replyBuyUnknown, nil
		}
		draft.Ticker = ticker
		if err := e.fsm.Transition(ctx, conv, state.StateBuyAmount); err != nil {
			return "", apperrors.NewStateError("advance buy flow", err)
		}
		return promptBuyAmount, nil

	case state.StateBuyAmount:
		amount, err := parseSolAmount(text)
		if err != nil {
			return replyBuyBadSol, nil
		}

		res, buyErr := e.ledger.Buy(ctx, senderID, draft.Ticker, amount)

		if err := e.fsm.Clear(ctx, senderID); err != nil {
			return "", apperrors.NewInternalError(err)
		}

		if buyErr != nil {
			if stdErrors.Is(buyErr, portfolio.ErrUnknownTicker) {
				return replyBuyUnknown, nil
			}
			return replyBuyBadSol, nil
		}

		return replyBought(res.Ticker, res.TokensReceived, res.PriceBefore, res.PriceAfter), nil
	}

	return mainMenu(), nil
}
