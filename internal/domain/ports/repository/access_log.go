package repository

import (
	"context"

	"telegram-nfc-access/internal/domain/model"
)

// AccessLogRepository is the port for the append-only audit trail.
type AccessLogRepository interface {
	// Append stores one entry. Entries are never updated or deleted.
	Append(ctx context.Context, tx Tx, entry *model.AccessLog) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.AccessLog, error)
}
