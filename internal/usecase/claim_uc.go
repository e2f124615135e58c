package usecase

import (
	"context"
	"errors"

	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/repository"
	"telegram-nfc-access/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// ClaimOutcome is the decision of a claim attempt. Outcomes are values, not
// errors: callers branch on the kind, and an error return means the attempt
// itself could not be processed (storage fault), never a rejection.
type ClaimOutcome string

const (
	OutcomeGrantedNew      ClaimOutcome = "granted_new"
	OutcomeGrantedExisting ClaimOutcome = "granted_existing"
	OutcomeNotFound        ClaimOutcome = "not_found"
	OutcomeRevoked         ClaimOutcome = "revoked"
	OutcomeOwnedByOther    ClaimOutcome = "owned_by_other"
)

// ClaimResult carries the outcome plus the key as seen inside the deciding
// transaction. Key is nil for OutcomeNotFound.
type ClaimResult struct {
	Outcome ClaimOutcome
	Key     *model.Key
}

// Granted reports whether the requester may receive an invite link.
func (r *ClaimResult) Granted() bool {
	return r.Outcome == OutcomeGrantedNew || r.Outcome == OutcomeGrantedExisting
}

// Compile-time check
var _ ClaimUseCase = (*claimUC)(nil)

// ClaimUseCase is the code-claim state machine. AttemptClaim is the only path
// that ever binds an owner to a key.
type ClaimUseCase interface {
	AttemptClaim(ctx context.Context, code string, tgID int64) (*ClaimResult, error)
	LatestClaimFor(ctx context.Context, tgID int64) (*model.Key, error)
	RecordInviteIssued(ctx context.Context, tgID int64, code, reason string) error
}

type claimUC struct {
	keys repository.KeyRepository
	logs repository.AccessLogRepository
	tm   repository.TransactionManager
	log  *zerolog.Logger
}

func NewClaimUseCase(keys repository.KeyRepository, logs repository.AccessLogRepository, tm repository.TransactionManager, logger *zerolog.Logger) *claimUC {
	return &claimUC{keys: keys, logs: logs, tm: tm, log: logger}
}

// AttemptClaim decides whether tgID may hold the key identified by code and,
// on first claim, binds ownership. The lookup, the ownership write and the
// audit entries for the attempt all run in one transaction: the row lock taken
// by FindByCodeForUpdate serializes concurrent attempts on the same code, so
// at most one distinct owner is ever recorded, and no processed attempt can be
// missing from the log.
func (u *claimUC) AttemptClaim(ctx context.Context, code string, tgID int64) (*ClaimResult, error) {
	defer logging.TraceDuration(u.log, "ClaimUC.AttemptClaim")()

	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithKeyCode(ctx, code)

	var res ClaimResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionAttempt, model.ReasonStartParam)); err != nil {
			return err
		}

		key, err := u.keys.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				res = ClaimResult{Outcome: OutcomeNotFound}
				return u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionRejected, model.ReasonCodeNotFound))
			}
			return err
		}

		switch {
		case key.Status == model.KeyStatusRevoked:
			res = ClaimResult{Outcome: OutcomeRevoked, Key: key}
			return u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionRejected, model.ReasonCodeRevoked))

		case key.OwnerUserID == nil:
			if err := u.keys.Claim(ctx, tx, code, tgID); err != nil {
				return err
			}
			// Re-read so the result reflects the stored state, owner and
			// claimed_at included.
			claimed, err := u.keys.FindByCode(ctx, tx, code)
			if err != nil {
				return err
			}
			res = ClaimResult{Outcome: OutcomeGrantedNew, Key: claimed}
			return u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionGranted, model.ReasonClaimedNew))

		case key.IsOwnedBy(tgID):
			res = ClaimResult{Outcome: OutcomeGrantedExisting, Key: key}
			return u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionGranted, model.ReasonAlreadyOwner))

		default:
			res = ClaimResult{Outcome: OutcomeOwnedByOther, Key: key}
			return u.logs.Append(ctx, tx, model.NewAccessLog(tgID, code, model.AccessActionRejected, model.ReasonOwnedByOther))
		}
	})
	if err != nil {
		return nil, err
	}

	logging.With(ctx, u.log).Info().
		Str("outcome", string(res.Outcome)).
		Msg("claim attempt decided")
	return &res, nil
}

// LatestClaimFor returns the most recently claimed key still held by tgID.
// Read-only; used to re-issue an invite without re-presenting the tag.
func (u *claimUC) LatestClaimFor(ctx context.Context, tgID int64) (*model.Key, error) {
	defer logging.TraceDuration(u.log, "ClaimUC.LatestClaimFor")()
	return u.keys.LatestClaimedByOwner(ctx, repository.NoTX, tgID)
}

// RecordInviteIssued appends the invite_created audit entry after the external
// issuer succeeded. Kept outside the claim transaction: the claim is final
// whether or not link issuance works out.
func (u *claimUC) RecordInviteIssued(ctx context.Context, tgID int64, code, reason string) error {
	return u.logs.Append(ctx, repository.NoTX, model.NewAccessLog(tgID, code, model.AccessActionInviteCreated, reason))
}
