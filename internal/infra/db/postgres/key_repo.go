package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.KeyRepository = (*keyRepo)(nil)

type keyRepo struct {
	pool *pgxpool.Pool
}

func NewKeyRepo(pool *pgxpool.Pool) repository.KeyRepository {
	return &keyRepo{pool: pool}
}

const keyColumns = `code, product_id, owner_user_id, status, created_at, claimed_at`

// Insert stores a fresh key. The primary key on code makes the uniqueness
// check part of the insert itself, so concurrent generators cannot race a
// separate existence check.
func (r *keyRepo) Insert(ctx context.Context, tx repository.Tx, key *model.Key) error {
	const q = `
INSERT INTO nfc_keys (code, product_id, owner_user_id, status, created_at, claimed_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		key.Code, key.ProductID, key.OwnerUserID, string(key.Status), key.CreatedAt, key.ClaimedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *keyRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Key, error) {
	return r.findOne(ctx, tx, `SELECT `+keyColumns+` FROM nfc_keys WHERE code = $1;`, code)
}

// FindByCodeForUpdate locks the key row for the remainder of the surrounding
// transaction. This is what serializes concurrent claim attempts on one code.
func (r *keyRepo) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.Key, error) {
	return r.findOne(ctx, tx, `SELECT `+keyColumns+` FROM nfc_keys WHERE code = $1 FOR UPDATE;`, code)
}

// Claim binds ownership with a guarded update. The WHERE clause re-checks the
// unowned/new state so that, even without the row lock, a second writer could
// never overwrite an owner.
func (r *keyRepo) Claim(ctx context.Context, tx repository.Tx, code string, tgID int64) error {
	const q = `
UPDATE nfc_keys
   SET owner_user_id = $1, status = $2, claimed_at = now()
 WHERE code = $3 AND owner_user_id IS NULL AND status = $4;
`
	tag, err := execSQL(ctx, r.pool, tx, q, tgID, string(model.KeyStatusClaimed), code, string(model.KeyStatusNew))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrKeyOwnedByOther
	}
	return nil
}

func (r *keyRepo) Revoke(ctx context.Context, tx repository.Tx, code string) error {
	const q = `UPDATE nfc_keys SET status = $1 WHERE code = $2;`
	tag, err := execSQL(ctx, r.pool, tx, q, string(model.KeyStatusRevoked), code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *keyRepo) LatestClaimedByOwner(ctx context.Context, tx repository.Tx, tgID int64) (*model.Key, error) {
	const q = `
SELECT ` + keyColumns + `
  FROM nfc_keys
 WHERE owner_user_id = $1 AND status = $2
 ORDER BY claimed_at DESC
 LIMIT 1;
`
	return r.findOne(ctx, tx, q, tgID, string(model.KeyStatusClaimed))
}

func (r *keyRepo) findOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Key, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var (
		k      model.Key
		status string
	)
	err = row.Scan(&k.Code, &k.ProductID, &k.OwnerUserID, &status, &k.CreatedAt, &k.ClaimedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	k.Status = model.KeyStatus(status)
	return &k, nil
}
