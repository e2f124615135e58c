package model

import (
	"crypto/rand"
	"io"
	"time"

	"telegram-nfc-access/internal/domain"
)

// KeyStatus tracks the lifecycle of an NFC key. The only legal transitions
// are new -> claimed (first successful claim) and new|claimed -> revoked.
// Nothing ever leaves revoked.
type KeyStatus string

const (
	KeyStatusNew     KeyStatus = "new"
	KeyStatusClaimed KeyStatus = "claimed"
	KeyStatusRevoked KeyStatus = "revoked"
)

// Key represents one physical NFC tag's redemption right. The code is the
// sole credential: whoever presents it first becomes the owner.
type Key struct {
	Code        string
	ProductID   *string // optional article/serial label, informational only
	OwnerUserID *int64  // Telegram ID of the owner; nil until first claim
	Status      KeyStatus
	CreatedAt   time.Time
	ClaimedAt   *time.Time
}

func NewKey(code string, productID *string) (*Key, error) {
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Key{
		Code:      code,
		ProductID: productID,
		Status:    KeyStatusNew,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (k *Key) IsOwnedBy(tgID int64) bool {
	return k.OwnerUserID != nil && *k.OwnerUserID == tgID
}

// codeAlphabet avoids ambiguous characters like O/0, I/1, l so codes survive
// being printed on physical tags.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of generated key codes. 12 characters over a
// 32-char alphabet gives 60 bits of entropy, enough that collisions and
// guessing are both out of reach.
const CodeLength = 12

// GenerateCode creates a secure random key code.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}
