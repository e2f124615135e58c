package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// AccessAction classifies an access log entry.
type AccessAction string

const (
	AccessActionAttempt       AccessAction = "attempt"
	AccessActionGranted       AccessAction = "granted"
	AccessActionRejected      AccessAction = "rejected"
	AccessActionInviteCreated AccessAction = "invite_created"
)

// Reasons recorded alongside granted/rejected entries.
const (
	ReasonStartParam   = "start_param"
	ReasonStartFlow    = "start_flow"
	ReasonAccessCmd    = "access_cmd"
	ReasonClaimedNew   = "claimed_new"
	ReasonAlreadyOwner = "already_owner"
	ReasonCodeNotFound = "code_not_found"
	ReasonCodeRevoked  = "code_revoked"
	ReasonOwnedByOther = "owned_by_another"
)

// AccessLog is an immutable fact about one claim attempt or invite issuance.
// Entries are only ever appended, never updated or deleted.
type AccessLog struct {
	ID         string
	TelegramID int64
	Code       string
	Action     AccessAction
	Reason     string
	CreatedAt  time.Time
}

// NewAccessLog stamps a fresh entry. ULIDs sort lexically by creation time,
// which keeps the log in approximate append order without a sequence.
func NewAccessLog(tgID int64, code string, action AccessAction, reason string) *AccessLog {
	now := time.Now().UTC()
	return &AccessLog{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		TelegramID: tgID,
		Code:       code,
		Action:     action,
		Reason:     reason,
		CreatedAt:  now,
	}
}
