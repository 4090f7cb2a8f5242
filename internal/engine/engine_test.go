package engine

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-abubakarsharif/chatdotfun/internal/market"
	"github.com/dev-abubakarsharif/chatdotfun/internal/portfolio"
	"github.com/dev-abubakarsharif/chatdotfun/internal/state"
	"github.com/dev-abubakarsharif/chatdotfun/internal/token"
	"github.com/dev-abubakarsharif/chatdotfun/internal/wallet"
)

type fixture struct {
	engine  *Engine
	market  *market.Model
	tokens  *token.Registry
	ledger  *portfolio.Ledger
	wallets *wallet.Registry
	fsm     *state.Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := market.NewModel(log, market.WithBasePrice(0.0001), market.WithScale(1e7))
	wallets := wallet.NewRegistry(log)
	tokens := token.NewRegistry(m, log)
	ledger := portfolio.NewLedger(tokens, m, log)
	fsm := state.NewMachine(state.NewMemoryStorage(), log)

	return &fixture{
		engine:  New(fsm, wallets, tokens, ledger, m, nil, log),
		market:  m,
		tokens:  tokens,
		ledger:  ledger,
		wallets: wallets,
		fsm:     fsm,
	}
}

func validKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(priv)
}

func (f *fixture) importWallet(t *testing.T, sender string) {
	t.Helper()
	reply := f.engine.HandleIncoming(context.Background(), sender, "/import "+validKey(t))
	require.Contains(t, reply, "Wallet imported")
}

// runLaunchFlow drives the guided launch dialog to completion.
func (f *fixture) runLaunchFlow(t *testing.T, sender, ticker string) {
	t.Helper()
	ctx := context.Background()

	steps := []string{"Chat King", ticker, "1000000", "1.0", "the king of chat", "https://t.me/cking"}
	f.engine.HandleIncoming(ctx, sender, "/launch")
	for _, input := range steps {
		f.engine.HandleIncoming(ctx, sender, input)
	}
	reply := f.engine.HandleIncoming(ctx, sender, "confirm")
	require.Contains(t, reply, "is live")
}

func TestEngine_OnboardingGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Without a wallet, everything except import gets the onboarding prompt.
	for _, msg := range []string{"hello", "/launch", "/ping", "1", "buy $CKING 0.5"} {
		reply := f.engine.HandleIncoming(ctx, "u1", msg)
		assert.Equal(t, replyOnboarding, reply, "message %q", msg)
	}

	assert.False(t, f.wallets.Has(ctx, "u1"))
}

func TestEngine_ImportCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.engine.HandleIncoming(ctx, "u1", "/import "+validKey(t))
	assert.Contains(t, reply, "Wallet imported")
	assert.True(t, f.wallets.Has(ctx, "u1"))

	// After import the user lands on the menu surface.
	reply = f.engine.HandleIncoming(ctx, "u1", "anything")
	assert.Contains(t, reply, "What do you want to do?")
}

func TestEngine_HeuristicImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Pasting a bare key with no command imports it.
	reply := f.engine.HandleIncoming(ctx, "u1", validKey(t))
	assert.Contains(t, reply, "Wallet imported")
}

func TestEngine_HeuristicImport_FailsGracefully(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed-phrase-shaped text that is not a valid key: onboarding prompt, no
	// wallet created.
	phrase := strings.Repeat("word ", 12)
	reply := f.engine.HandleIncoming(ctx, "u1", phrase)
	assert.Equal(t, replyOnboarding, reply)
	assert.False(t, f.wallets.Has(ctx, "u1"))

	// Base58-shaped garbage of the wrong length behaves the same.
	garbage := base58.Encode(make([]byte, 40))
	reply = f.engine.HandleIncoming(ctx, "u1", garbage)
	assert.Equal(t, replyOnboarding, reply)
	assert.False(t, f.wallets.Has(ctx, "u1"))
}

func TestEngine_Ping(t *testing.T) {
	f := newFixture(t)
	f.importWallet(t, "u1")

	assert.Equal(t, replyPong, f.engine.HandleIncoming(context.Background(), "u1", "/ping"))
}

func TestEngine_LaunchFlow_Complete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	f.runLaunchFlow(t, "u1", "cking")

	tok, err := f.tokens.Get(ctx, "CKING")
	require.NoError(t, err)
	assert.Equal(t, "Chat King", tok.Name)
	assert.Equal(t, int64(1_000_000), tok.Supply)

	// Seed sale advanced the curve by 1% of supply.
	assert.Equal(t, int64(10_000), f.market.CumulativeVolume())

	// The flow is cleared.
	_, err = f.fsm.Get(ctx, "u1")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestEngine_LaunchFlow_InvalidSupplyStaysOnStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	f.engine.HandleIncoming(ctx, "u1", "/launch")
	f.engine.HandleIncoming(ctx, "u1", "Chat King")
	f.engine.HandleIncoming(ctx, "u1", "CKING")

	reply := f.engine.HandleIncoming(ctx, "u1", "2000000000")
	assert.Equal(t, replyInvalidSupply, reply)

	conv, err := f.fsm.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, state.StateLaunchSupply, conv.CurrentState)

	assert.Empty(t, f.tokens.List(ctx), "no token may be created")

	// A valid supply then advances to the liquidity step.
	reply = f.engine.HandleIncoming(ctx, "u1", "1000000")
	assert.Equal(t, promptLaunchLiquidity, reply)
}

func TestEngine_LaunchFlow_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	inputs := []string{"/launch", "Chat King", "CKING", "1000000", "1.0", "desc", "link"}
	for _, input := range inputs {
		f.engine.HandleIncoming(ctx, "u1", input)
	}

	reply := f.engine.HandleIncoming(ctx, "u1", "CANCEL")
	assert.Equal(t, replyLaunchCancelled, reply)
	assert.Empty(t, f.tokens.List(ctx))
	assert.Zero(t, f.market.CumulativeVolume())

	_, err := f.fsm.Get(ctx, "u1")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestEngine_LaunchFlow_ConfirmReprompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	inputs := []string{"/launch", "Chat King", "CKING", "1000000", "1.0", "desc", "link"}
	for _, input := range inputs {
		f.engine.HandleIncoming(ctx, "u1", input)
	}

	reply := f.engine.HandleIncoming(ctx, "u1", "maybe?")
	assert.Equal(t, promptLaunchConfirmHint, reply)

	conv, err := f.fsm.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, state.StateLaunchConfirm, conv.CurrentState)
}

func TestEngine_LaunchFlow_CommandsNotRecognizedMidFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	f.engine.HandleIncoming(ctx, "u1", "/launch")

	// "/ping" mid-flow is consumed as the token name, not as a command.
	f.engine.HandleIncoming(ctx, "u1", "/ping")

	conv, err := f.fsm.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, state.StateLaunchTicker, conv.CurrentState)
	assert.Equal(t, "/ping", conv.Launch.Name)
}

func TestEngine_BuyScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	priceBefore := f.market.CurrentPrice("CKING")
	volBefore := f.market.CumulativeVolume()

	reply := f.engine.HandleIncoming(ctx, "u1", "/buy CKING 0.5")
	assert.Contains(t, reply, "Bought")

	wantTokens := int64(math.Floor(0.5 / priceBefore))
	assert.Equal(t, wantTokens, f.ledger.Quantity(ctx, "u1", "CKING"))
	assert.Equal(t, volBefore+wantTokens, f.market.CumulativeVolume())
}

func TestEngine_GuidedAndInstantBuyMatch(t *testing.T) {
	ctx := context.Background()

	// Two identical worlds, one buy per path; resulting state must match.
	guided := newFixture(t)
	guided.importWallet(t, "u1")
	guided.runLaunchFlow(t, "u1", "CKING")
	guided.engine.HandleIncoming(ctx, "u1", "/buy")
	guided.engine.HandleIncoming(ctx, "u1", "CKING")
	guided.engine.HandleIncoming(ctx, "u1", "0.5")

	instant := newFixture(t)
	instant.importWallet(t, "u1")
	instant.runLaunchFlow(t, "u1", "CKING")
	instant.engine.HandleIncoming(ctx, "u1", "/buy CKING 0.5")

	assert.Equal(t,
		guided.ledger.Quantity(ctx, "u1", "CKING"),
		instant.ledger.Quantity(ctx, "u1", "CKING"),
	)
	assert.Equal(t, guided.market.CumulativeVolume(), instant.market.CumulativeVolume())
}

func TestEngine_FreeTextInstantBuy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	reply := f.engine.HandleIncoming(ctx, "u1", "buy $CKING 0.5")
	assert.Contains(t, reply, "Bought")
	assert.Positive(t, f.ledger.Quantity(ctx, "u1", "CKING"))
}

func TestEngine_SellWithoutHoldings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	reply := f.engine.HandleIncoming(ctx, "u1", "/sell $CKING 100")
	assert.Contains(t, reply, "only hold 0")
	assert.Equal(t, int64(0), f.ledger.Quantity(ctx, "u1", "CKING"))
}

func TestEngine_SellRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	f.engine.HandleIncoming(ctx, "u1", "/buy CKING 0.5")
	held := f.ledger.Quantity(ctx, "u1", "CKING")
	require.Positive(t, held)

	reply := f.engine.HandleIncoming(ctx, "u1", fmt.Sprintf("/sell %d $CKING", held))
	assert.Contains(t, reply, "Sold")
	assert.Equal(t, int64(0), f.ledger.Quantity(ctx, "u1", "CKING"))
}

func TestEngine_OneShotUnknownTicker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	// One-shot trades answer with standalone wording, not the guided flow's
	// "send another ticker" re-prompt.
	reply := f.engine.HandleIncoming(ctx, "u1", "/sell $GHOST 10")
	assert.Equal(t, replyUnknownTicker, reply)

	reply = f.engine.HandleIncoming(ctx, "u1", "/buy GHOST 0.5")
	assert.Equal(t, replyUnknownTicker, reply)

	// No flow was started by either failure.
	_, err := f.fsm.Get(ctx, "u1")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestEngine_SellAmbiguousAsksForClarification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	reply := f.engine.HandleIncoming(ctx, "u1", "/sell CKING DOGE 100")
	assert.Equal(t, replySellUsage, reply)
}

func TestEngine_MenuRouting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	// 3 -> portfolio
	reply := f.engine.HandleIncoming(ctx, "u1", "3")
	assert.Contains(t, reply, "portfolio")

	// 4 -> trending shows the launched token
	reply = f.engine.HandleIncoming(ctx, "u1", "4")
	assert.Contains(t, reply, "$CKING")

	// keyword and emoji aliases
	reply = f.engine.HandleIncoming(ctx, "u1", "Trending")
	assert.Contains(t, reply, "$CKING")
	reply = f.engine.HandleIncoming(ctx, "u1", "📊")
	assert.Contains(t, reply, "portfolio")

	// unmatched text falls back to the menu
	reply = f.engine.HandleIncoming(ctx, "u1", "what is this")
	assert.Contains(t, reply, "What do you want to do?")
}

func TestEngine_BuyFlow_UnknownTickerReprompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	f.engine.HandleIncoming(ctx, "u1", "/buy")
	reply := f.engine.HandleIncoming(ctx, "u1", "GHOST")
	assert.Equal(t, replyBuyUnknown, reply)

	conv, err := f.fsm.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, state.StateBuyTicker, conv.CurrentState)

	// A real ticker advances to the amount step.
	reply = f.engine.HandleIncoming(ctx, "u1", "CKING")
	assert.Equal(t, promptBuyAmount, reply)
}

func TestEngine_BuyFlow_NoTokensYet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	reply := f.engine.HandleIncoming(ctx, "u1", "2")
	assert.Equal(t, replyNoTokensYet, reply)

	_, err := f.fsm.Get(ctx, "u1")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestEngine_DuplicateLaunchRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")
	f.runLaunchFlow(t, "u1", "CKING")

	f.importWallet(t, "u2")
	f.engine.HandleIncoming(ctx, "u2", "/launch")
	f.engine.HandleIncoming(ctx, "u2", "Copycat")

	// The ticker step already rejects a taken symbol.
	reply := f.engine.HandleIncoming(ctx, "u2", "CKING")
	assert.Equal(t, replyTickerTaken, reply)

	conv, err := f.fsm.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, state.StateLaunchTicker, conv.CurrentState)

	assert.Len(t, f.tokens.List(ctx), 1)
}

func TestEngine_PortfolioRendering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.importWallet(t, "u1")

	reply := f.engine.HandleIncoming(ctx, "u1", "/portfolio")
	assert.Contains(t, reply, "empty")

	f.runLaunchFlow(t, "u1", "CKING")
	f.engine.HandleIncoming(ctx, "u1", "/buy CKING 0.5")

	reply = f.engine.HandleIncoming(ctx, "u1", "/portfolio")
	assert.Contains(t, reply, "$CKING")
}

func TestEngine_ReimportOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.importWallet(t, "u1")
	first, err := f.wallets.Get(ctx, "u1")
	require.NoError(t, err)

	reply := f.engine.HandleIncoming(ctx, "u1", "/import "+validKey(t))
	assert.Contains(t, reply, "Wallet imported")

	second, err := f.wallets.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, 1, f.wallets.Count(ctx))
}
