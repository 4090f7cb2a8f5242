// Package telegram bridges Telegram updates to the conversation engine. The
// engine is transport-agnostic; this adapter only shuttles text in and
// replies out.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/dev-abubakarsharif/chatdotfun/internal/engine"
)

// Bot wraps telebot.Bot and forwards every text message to the engine.
type Bot struct {
	telebot *telebot.Bot
	engine  *engine.Engine
	log     *slog.Logger
}

// New builds a long-polling Telegram bot.
func New(token string, pollTimeout time.Duration, eng *engine.Engine, log *slog.Logger) (*Bot, error) {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{telebot: tb, engine: eng, log: log}
	tb.Handle(telebot.OnText, b.onText)

	return b, nil
}

// Telebot exposes the underlying client, chiefly for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Start begins polling and blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("telegram bot starting", slog.String("username", b.username()))
	b.telebot.Start()
}

// Stop halts polling.
func (b *Bot) Stop() {
	b.telebot.Stop()
	b.log.Info("telegram bot stopped")
}

func (b *Bot) onText(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	senderID := strconv.FormatInt(sender.ID, 10)
	reply := b.engine.HandleIncoming(context.Background(), senderID, c.Text())
	if reply == "" {
		return nil
	}

	return c.Send(reply)
}

func (b *Bot) username() string {
	if b.telebot.Me != nil {
		return b.telebot.Me.Username
	}
	return ""
}
