package repository

import (
	"context"

	"telegram-nfc-access/internal/domain/model"
)

// KeyRepository is the port for the NFC key store. All ownership mutation goes
// through the claim use case or Revoke; there is no free-form update.
type KeyRepository interface {
	// Insert stores a fresh key. Uniqueness of the code is enforced by the
	// insert itself; a colliding code returns domain.ErrAlreadyExists.
	Insert(ctx context.Context, tx Tx, key *model.Key) error
	// FindByCode loads a key, or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Key, error)
	// FindByCodeForUpdate loads a key and, when tx is a live transaction,
	// locks its row until the transaction ends.
	FindByCodeForUpdate(ctx context.Context, tx Tx, code string) (*model.Key, error)
	// Claim binds the key to tgID iff it is still unowned and in status new.
	// Returns domain.ErrKeyOwnedByOther when the guard fails.
	Claim(ctx context.Context, tx Tx, code string, tgID int64) error
	// Revoke flips the key to revoked regardless of prior status. The owner is
	// kept for auditability. Returns domain.ErrNotFound for unknown codes.
	Revoke(ctx context.Context, tx Tx, code string) error
	// LatestClaimedByOwner returns the most recently claimed key still in
	// status claimed for the given owner, or domain.ErrNotFound.
	LatestClaimedByOwner(ctx context.Context, tx Tx, tgID int64) (*model.Key, error)
}
