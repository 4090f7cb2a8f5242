package engine

import (
	"fmt"
	"strings"

	"github.com/dev-abubakarsharif/chatdotfun/internal/domain"
)

const (
	replyOnboarding = "👋 Welcome to chat.fun!\n" +
		"To get started, import a wallet: paste your secret key " +
		"(a JSON byte array or a base58 string) or send /import <key>."

	replyImportFailed = "❌ That doesn't look like a valid secret key. " +
		"Paste a JSON byte array or a base58-encoded key, or send /import <key>."

	replyPong = "🏓 pong"

	promptLaunchName        = "🚀 Let's launch a token! What's its name?"
	promptLaunchTicker      = "Pick a ticker symbol (1-8 letters or digits, e.g. $CKING):"
	promptLaunchSupply      = "Total supply? (a whole number up to 1,000,000,000)"
	promptLaunchLiquidity   = "Initial liquidity in SOL? (at least 0.5)"
	promptLaunchDescription = "Describe your token in a sentence:"
	promptLaunchCommunity   = "Drop a community link (Telegram, X, anything):"

	replyInvalidTicker    = "❌ Tickers are 1-8 letters or digits. Try again:"
	replyTickerTaken      = "❌ That ticker is already taken. Pick another:"
	replyInvalidSupply    = "❌ Supply must be a whole number between 1 and 1,000,000,000. Try again:"
	replyInvalidLiquidity = "❌ Liquidity must be at least 0.5 SOL. Try again:"
	replyNeedText         = "Please send some text:"

	promptLaunchConfirmHint = "Send ✅ confirm to launch or ❌ cancel to abort."
	replyLaunchCancelled    = "🚫 Launch cancelled. Nothing was created."

	promptBuyTicker  = "💰 Which token do you want to buy? Send its ticker:"
	promptBuyAmount  = "How much SOL do you want to spend?"
	replyBuyUnknown  = "❌ No token with that ticker. Send another ticker:"
	replyBuyBadSol   = "❌ Send a positive SOL amount, e.g. 0.5:"
	replyNoTokensYet = "No tokens have been launched yet. Send 1 to launch the first one!"

	replySellUsage = "Usage: /sell <ticker> <amount> — e.g. /sell $CKING 100"

	replyUnknownTicker = "❌ No token with that ticker exists. Send 4 to see what's trading."
)

func mainMenu() string {
	return "📋 What do you want to do?\n" +
		"1. 🚀 Launch a token\n" +
		"2. 💰 Buy\n" +
		"3. 📊 Portfolio\n" +
		"4. 🔥 Trending\n" +
		"Reply with a number, or use /launch /buy /sell /portfolio /ping."
}

func replyImported(publicKey string) string {
	return fmt.Sprintf("✅ Wallet imported!\nYour address: %s\n\n%s", publicKey, mainMenu())
}

func launchSummary(d launchDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's your token:\n")
	fmt.Fprintf(&b, "• Name: %s\n", d.Name)
	fmt.Fprintf(&b, "• Ticker: $%s\n", d.Ticker)
	fmt.Fprintf(&b, "• Supply: %d\n", d.Supply)
	fmt.Fprintf(&b, "• Liquidity: %.2f SOL\n", d.Liquidity)
	fmt.Fprintf(&b, "• Description: %s\n", d.Description)
	fmt.Fprintf(&b, "• Community: %s\n\n", d.Community)
	b.WriteString(promptLaunchConfirmHint)
	return b.String()
}

type launchDetails struct {
	Name        string
	Ticker      string
	Supply      int64
	Liquidity   float64
	Description string
	Community   string
}

func replyLaunched(tok *domain.LaunchedToken, price float64) string {
	return fmt.Sprintf("🎉 $%s is live!\nSupply: %d\nCurrent price: %.8f SOL\nBuy it with /buy %s <amount>",
		tok.Ticker, tok.Supply, price, tok.Ticker)
}

func replyBought(ticker string, tokens int64, price, priceAfter float64) string {
	return fmt.Sprintf("✅ Bought %d $%s at %.8f SOL each.\nNew price: %.8f SOL", tokens, ticker, price, priceAfter)
}

func replySold(ticker string, quantity int64, solReturned, priceAfter float64) string {
	return fmt.Sprintf("✅ Sold %d $%s for %.6f SOL.\nNew price: %.8f SOL", quantity, ticker, solReturned, priceAfter)
}

func replyInsufficient(ticker string, held int64) string {
	return fmt.Sprintf("❌ You only hold %d $%s. Sell that much or less.", held, ticker)
}

func renderPortfolio(holdings []domain.Holding) string {
	if len(holdings) == 0 {
		return "📊 Your portfolio is empty. Send 2 to buy a token!"
	}

	var b strings.Builder
	b.WriteString("📊 Your portfolio:\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "• $%s: %d\n", h.Ticker, h.Quantity)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTrending(tokens []*domain.LaunchedToken, price float64) string {
	if len(tokens) == 0 {
		return replyNoTokensYet
	}

	var b strings.Builder
	b.WriteString("🔥 Trending tokens:\n")
	for _, tok := range tokens {
		fmt.Fprintf(&b, "• $%s — %s — %.8f SOL\n", tok.Ticker, tok.Name, price)
	}
	return strings.TrimRight(b.String(), "\n")
}
