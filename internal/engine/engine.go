// Package engine is the conversation core: it routes each inbound message
// through the wallet gate, an active flow, or the command surface, and
// produces the reply text.
package engine

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "github.com/dev-abubakarsharif/chatdotfun/internal/errors"
	"github.com/dev-abubakarsharif/chatdotfun/internal/market"
	"github.com/dev-abubakarsharif/chatdotfun/internal/portfolio"
	"github.com/dev-abubakarsharif/chatdotfun/internal/state"
	"github.com/dev-abubakarsharif/chatdotfun/internal/token"
	"github.com/dev-abubakarsharif/chatdotfun/internal/wallet"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/metrics"
)

// Engine wires the conversation state machine to the wallet, token, and
// portfolio stores. One instance serves every transport.
type Engine struct {
	fsm     *state.Machine
	wallets *wallet.Registry
	tokens  *token.Registry
	ledger  *portfolio.Ledger
	market  *market.Model
	errs    *apperrors.Handler
	log     *slog.Logger

	senderLocks sync.Map // senderID -> *sync.Mutex
}

// New constructs the engine.
func New(
	fsm *state.Machine,
	wallets *wallet.Registry,
	tokens *token.Registry,
	ledger *portfolio.Ledger,
	m *market.Model,
	errs *apperrors.Handler,
	log *slog.Logger,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if errs == nil {
		errs = apperrors.NewHandler(log, false)
	}

	return &Engine{
		fsm:     fsm,
		wallets: wallets,
		tokens:  tokens,
		ledger:  ledger,
		market:  m,
		errs:    errs,
		log:     log,
	}
}

// HandleIncoming processes one inbound message and returns the reply text.
// Messages from the same sender are handled strictly one at a time.
func (e *Engine) HandleIncoming(ctx context.Context, senderID, rawText string) string {
	lock := e.senderLock(senderID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	text := strings.TrimSpace(rawText)

	reply, command, err := e.route(ctx, senderID, text)

	status := "ok"
	if err != nil {
		status = "error"
		reply = e.errs.Handle(ctx, err)
	}
	metrics.RecordMessage(command, status, time.Since(start))
	metrics.SetWalletCount(e.wallets.Count(ctx))

	e.log.Debug("message handled",
		slog.String("sender", senderID),
		slog.String("command", command),
		slog.String("status", status),
	)

	return reply
}

func (e *Engine) route(ctx context.Context, senderID, text string) (reply, command string, err error) {
	if !e.wallets.Has(ctx, senderID) {
		reply = e.handleNoWallet(ctx, senderID, text)
		return reply, "onboarding", nil
	}

	conv, convErr := e.fsm.Get(ctx, senderID)
	switch {
	case convErr == nil:
		reply, err = e.handleFlowStep(ctx, senderID, conv, text)
		return reply, "flow:" + string(conv.CurrentState), err
	case stdErrors.Is(convErr, state.ErrStateNotFound):
		// no active flow; fall through to the command surface
	default:
		return "", "flow", apperrors.NewInternalError(convErr)
	}

	return e.routeIdle(ctx, senderID, text)
}

// handleNoWallet admits only import attempts: the explicit command, or pasted
// text that looks like key material. Everything else gets the onboarding
// prompt.
func (e *Engine) handleNoWallet(ctx context.Context, senderID, text string) string {
	if arg, ok := commandArg(text, CommandImport); ok {
		return e.importWallet(ctx, senderID, arg)
	}

	if wallet.LooksLikeKeyMaterial(text) {
		if reply := e.tryHeuristicImport(ctx, senderID, text); reply != "" {
			return reply
		}
	}

	return replyOnboarding
}

func (e *Engine) importWallet(ctx context.Context, senderID, raw string) string {
	w, err := e.wallets.Import(ctx, senderID, raw)
	if err != nil {
		return replyImportFailed
	}
	return replyImported(w.PublicKey)
}

// tryHeuristicImport attempts an import on unprompted text. It returns an
// empty string when the material does not validate, so the caller can fall
// back to onboarding without creating a wallet.
func (e *Engine) tryHeuristicImport(ctx context.Context, senderID, text string) string {
	w, err := e.wallets.Import(ctx, senderID, text)
	if err != nil {
		e.log.Debug("heuristic import attempt failed", slog.String("sender", senderID))
		return ""
	}
	return replyImported(w.PublicKey)
}

// routeIdle classifies free text outside a flow: numeric menu choice first,
// then keyword/emoji aliases, then slash commands. Unmatched text returns
// the main menu.
func (e *Engine) routeIdle(ctx context.Context, senderID, text string) (string, string, error) {
	lower := strings.ToLower(text)
	fields := strings.Fields(text)

	choice := ""
	switch {
	case text == menuChoiceLaunch || text == menuChoiceBuy || text == menuChoicePortfolio || text == menuChoiceTrending:
		choice = text
	case menuKeywords[lower] != "":
		choice = menuKeywords[lower]
	case len(fields) >= 3 && strings.EqualFold(fields[0], "buy"):
		// free-text instant buy: "buy $TICKER 0.5"
		return e.instantBuy(ctx, senderID, fields[1], fields[2]), "buy", nil
	}

	switch choice {
	case menuChoiceLaunch:
		reply, err := e.startLaunchFlow(ctx, senderID)
		return reply, "launch", err
	case menuChoiceBuy:
		reply, err := e.startBuyFlow(ctx, senderID)
		return reply, "buy", err
	case menuChoicePortfolio:
		return renderPortfolio(e.ledger.Holdings(ctx, senderID)), "portfolio", nil
	case menuChoiceTrending:
		return renderTrending(e.tokens.List(ctx), e.market.CurrentPrice("")), "trending", nil
	}

	if strings.HasPrefix(text, "/") {
		return e.routeSlashCommand(ctx, senderID, text, fields)
	}

	return mainMenu(), "menu", nil
}

func (e *Engine) routeSlashCommand(ctx context.Context, senderID, text string, fields []string) (string, string, error) {
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case CommandLaunch:
		reply, err := e.startLaunchFlow(ctx, senderID)
		return reply, "launch", err

	case CommandBuy:
		if len(args) >= 2 {
			return e.instantBuy(ctx, senderID, args[0], args[1]), "buy", nil
		}
		reply, err := e.startBuyFlow(ctx, senderID)
		return reply, "buy", err

	case CommandSell:
		return e.instantSell(ctx, senderID, args), "sell", nil

	case CommandPortfolio:
		return renderPortfolio(e.ledger.Holdings(ctx, senderID)), "portfolio", nil

	case CommandPing:
		return replyPong, "ping", nil

	case CommandImport:
		if arg, ok := commandArg(text, CommandImport); ok {
			return e.importWallet(ctx, senderID, arg), "import", nil
		}
		return replyImportFailed, "import", nil
	}

	return mainMenu(), "menu", nil
}

// instantBuy is the one-shot buy path. It calls the same ledger operation as
// the guided flow, so both paths land on identical state for identical input.
func (e *Engine) instantBuy(ctx context.Context, senderID, rawTicker, rawAmount string) string {
	amount, err := parseSolAmount(rawAmount)
	if err != nil {
		return replyBuyBadSol
	}

	res, err := e.ledger.Buy(ctx, senderID, rawTicker, amount)
	if err != nil {
		return buyErrorReply(err)
	}

	return replyBought(res.Ticker, res.TokensReceived, res.PriceBefore, res.PriceAfter)
}

func (e *Engine) instantSell(ctx context.Context, senderID string, args []string) string {
	rawTicker, quantity, err := parseSellArgs(args)
	if err != nil {
		return replySellUsage
	}

	res, err := e.ledger.Sell(ctx, senderID, rawTicker, quantity)
	if err != nil {
		switch {
		case stdErrors.Is(err, portfolio.ErrUnknownTicker):
			return replyUnknownTicker
		case stdErrors.Is(err, portfolio.ErrInvalidAmount):
			return replySellUsage
		case stdErrors.Is(err, portfolio.ErrInsufficientHoldings):
			normalized, nErr := token.NormalizeTicker(rawTicker)
			if nErr != nil {
				normalized = rawTicker
			}
			return replyInsufficient(normalized, e.ledger.Quantity(ctx, senderID, normalized))
		}
		return replySellUsage
	}

	return replySold(res.Ticker, quantity, res.SolReturned, res.PriceAfter)
}

// buyErrorReply phrases ledger failures for the one-shot paths; the guided
// flow keeps its own re-prompting replies.
func buyErrorReply(err error) string {
	switch {
	case stdErrors.Is(err, portfolio.ErrUnknownTicker):
		return replyUnknownTicker
	case stdErrors.Is(err, portfolio.ErrInvalidAmount):
		return replyBuyBadSol
	}
	return replyBuyBadSol
}

// commandArg returns the argument portion of "<command> <arg...>" when text
// starts with the command, preserving the argument's inner spacing.
func commandArg(text, command string) (string, bool) {
	if len(text) < len(command) || !strings.EqualFold(text[:len(command)], command) {
		return "", false
	}

	rest := text[len(command):]
	if rest != "" && !strings.HasPrefix(rest, " ") {
		return "", false
	}

	arg := strings.TrimSpace(rest)
	if arg == "" {
		return "", false
	}

	return arg, true
}

func (e *Engine) senderLock(senderID string) *sync.Mutex {
	actual, _ := e.senderLocks.LoadOrStore(senderID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
