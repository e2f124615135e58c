package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegram-nfc-access/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages and fabricates
// invite links.
type NoopBotAdapter struct{}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To user %d: %s\n", tgID, text)
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To user %d: %s [buttons: %v]\n", tgID, text, rows)
	return nil
}

func (b *NoopBotAdapter) CreateInviteLink(ctx context.Context, chatID int64, name string, expiresAt time.Time, memberLimit int) (*adapter.InviteLink, error) {
	link := fmt.Sprintf("https://t.me/+noop-%d-%d", chatID, expiresAt.Unix())
	log.Printf("[noop-telegram] invite link for chat %d (%s, limit %d): %s", chatID, name, memberLimit, link)
	return &adapter.InviteLink{URL: link, ExpiresAt: expiresAt}, nil
}

func (b *NoopBotAdapter) Username() string { return "noop_bot" }
