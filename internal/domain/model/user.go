package model

import (
	"time"

	"telegram-nfc-access/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a Telegram user that has contacted the
// bot. Users are passive: they exist so the audit trail and key ownership have
// something stable to reference.
type User struct {
	ID           string
	TelegramID   int64
	Username     string
	FirstSeenAt  time.Time
	LastActiveAt time.Time
}

func NewUser(id string, tgID int64, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &User{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		FirstSeenAt:  now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now().UTC() }
