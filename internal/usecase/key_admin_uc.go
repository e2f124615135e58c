package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/repository"
	"telegram-nfc-access/internal/infra/logging"

	"github.com/rs/zerolog"
)

// insertRetries bounds collision retries per generated code. With 60-bit codes
// a single collision is already extraordinary; exhausting the retries points
// at a broken random source, not bad luck.
const insertRetries = 5

// Compile-time check
var _ KeyAdminUseCase = (*keyAdminUC)(nil)

// KeyAdminUseCase groups the operator-facing key management operations.
type KeyAdminUseCase interface {
	Generate(ctx context.Context, count int, productID *string) ([]string, error)
	Revoke(ctx context.Context, code string) error
	Inspect(ctx context.Context, code string) (*model.Key, error)
	RecentLogs(ctx context.Context, limit int) ([]*model.AccessLog, error)
}

type keyAdminUC struct {
	keys repository.KeyRepository
	logs repository.AccessLogRepository
	log  *zerolog.Logger
}

func NewKeyAdminUseCase(keys repository.KeyRepository, logs repository.AccessLogRepository, logger *zerolog.Logger) *keyAdminUC {
	return &keyAdminUC{keys: keys, logs: logs, log: logger}
}

// Generate creates count fresh keys in status new. Each insert enforces code
// uniqueness on its own; there is no batch atomicity and none is needed, a
// partially generated batch just yields fewer tags to print.
func (u *keyAdminUC) Generate(ctx context.Context, count int, productID *string) ([]string, error) {
	defer logging.TraceDuration(u.log, "KeyAdminUC.Generate")()

	if count <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := u.insertFresh(ctx, productID)
		if err != nil {
			return codes, fmt.Errorf("generate key %d/%d: %w", i+1, count, err)
		}
		codes = append(codes, code)
	}
	u.log.Info().Int("count", len(codes)).Msg("key batch generated")
	return codes, nil
}

func (u *keyAdminUC) insertFresh(ctx context.Context, productID *string) (string, error) {
	for attempt := 0; attempt < insertRetries; attempt++ {
		code, err := model.GenerateCode()
		if err != nil {
			return "", err
		}
		key, err := model.NewKey(code, productID)
		if err != nil {
			return "", err
		}
		err = u.keys.Insert(ctx, repository.NoTX, key)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
		u.log.Warn().Str("code", logging.RedactCode(code, false)).Msg("key code collision, retrying")
	}
	return "", fmt.Errorf("no unique code after %d attempts", insertRetries)
}

// Revoke permanently disables a key. Irreversible; the owner reference is kept
// so /who still answers for revoked keys.
func (u *keyAdminUC) Revoke(ctx context.Context, code string) error {
	defer logging.TraceDuration(u.log, "KeyAdminUC.Revoke")()
	if code == "" {
		return domain.ErrInvalidArgument
	}
	return u.keys.Revoke(ctx, repository.NoTX, code)
}

// Inspect returns the stored record for a code, for the admin /who command.
func (u *keyAdminUC) Inspect(ctx context.Context, code string) (*model.Key, error) {
	defer logging.TraceDuration(u.log, "KeyAdminUC.Inspect")()
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.keys.FindByCode(ctx, repository.NoTX, code)
}

// RecentLogs returns the newest audit entries for the admin /logs command.
func (u *keyAdminUC) RecentLogs(ctx context.Context, limit int) ([]*model.AccessLog, error) {
	defer logging.TraceDuration(u.log, "KeyAdminUC.RecentLogs")()
	if limit <= 0 {
		limit = 20
	}
	return u.logs.ListRecent(ctx, repository.NoTX, limit)
}
