package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/repository"
)

var _ repository.AccessLogRepository = (*accessLogRepo)(nil)

type accessLogRepo struct {
	pool *pgxpool.Pool
}

func NewAccessLogRepo(pool *pgxpool.Pool) repository.AccessLogRepository {
	return &accessLogRepo{pool: pool}
}

// Append inserts one immutable entry. There is no update path on this table.
func (r *accessLogRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AccessLog) error {
	const q = `
INSERT INTO access_logs (id, telegram_id, code, action, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		entry.ID, entry.TelegramID, entry.Code, string(entry.Action), entry.Reason, entry.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit entries, newest first. ULIDs order the same
// as insertion time, so the primary key doubles as the sort key.
func (r *accessLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.AccessLog, error) {
	const q = `
SELECT id, telegram_id, code, action, reason, created_at
  FROM access_logs
 ORDER BY id DESC
 LIMIT $1;
`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AccessLog
	for rows.Next() {
		var (
			e      model.AccessLog
			action string
		)
		if err := rows.Scan(&e.ID, &e.TelegramID, &e.Code, &action, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = model.AccessAction(action)
		out = append(out, &e)
	}
	return out, rows.Err()
}
