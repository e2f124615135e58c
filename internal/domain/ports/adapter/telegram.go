package adapter

import (
	"context"
	"time"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// InviteLink is a single-use, time-bounded credential into the target chat.
type InviteLink struct {
	URL       string
	ExpiresAt time.Time
}

// TelegramBotAdapter is the outbound port to the chat platform. Invite link
// issuance lives here because it is the platform's capability, not ours: the
// claim decision is already final by the time CreateInviteLink is called.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
	SendButtons(ctx context.Context, telegramID int64, text string, rows [][]InlineButton) error
	// CreateInviteLink asks the platform for a fresh invite into chatID,
	// valid until expiresAt and for memberLimit joins.
	CreateInviteLink(ctx context.Context, chatID int64, name string, expiresAt time.Time, memberLimit int) (*InviteLink, error)
	// Username reports the bot's own username, used to build deep links.
	Username() string
}
