//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockTxManager serializes transaction bodies with a mutex, emulating the
// row-lock ordering the Postgres TxManager provides for a contended code.
type mockTxManager struct {
	mu sync.Mutex
}

func newMockTxManager() *mockTxManager { return &mockTxManager{} }

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// memKeyRepo is a small in-memory KeyRepository used by unit tests.
type memKeyRepo struct {
	mu        sync.Mutex
	store     map[string]*model.Key
	insertErr error // used by tests to simulate insert failures
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{store: make(map[string]*model.Key)}
}

func (m *memKeyRepo) Insert(ctx context.Context, _ repository.Tx, key *model.Key) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[key.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *key
	m.store[key.Code] = &cp
	return nil
}

func (m *memKeyRepo) FindByCode(ctx context.Context, _ repository.Tx, code string) (*model.Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *memKeyRepo) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.Key, error) {
	return m.FindByCode(ctx, tx, code)
}

func (m *memKeyRepo) Claim(ctx context.Context, _ repository.Tx, code string, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.store[code]
	if !ok {
		return domain.ErrNotFound
	}
	if k.OwnerUserID != nil || k.Status != model.KeyStatusNew {
		return domain.ErrKeyOwnedByOther
	}
	now := time.Now().UTC()
	k.OwnerUserID = &tgID
	k.Status = model.KeyStatusClaimed
	k.ClaimedAt = &now
	return nil
}

func (m *memKeyRepo) Revoke(ctx context.Context, _ repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.store[code]
	if !ok {
		return domain.ErrNotFound
	}
	k.Status = model.KeyStatusRevoked
	return nil
}

func (m *memKeyRepo) LatestClaimedByOwner(ctx context.Context, _ repository.Tx, tgID int64) (*model.Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Key
	for _, k := range m.store {
		if k.Status != model.KeyStatusClaimed || !k.IsOwnedBy(tgID) {
			continue
		}
		if latest == nil || (k.ClaimedAt != nil && latest.ClaimedAt != nil && k.ClaimedAt.After(*latest.ClaimedAt)) {
			latest = k
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// memAccessLogRepo keeps appended entries in order.
type memAccessLogRepo struct {
	mu      sync.Mutex
	entries []*model.AccessLog
}

func newMemAccessLogRepo() *memAccessLogRepo { return &memAccessLogRepo{} }

func (m *memAccessLogRepo) Append(ctx context.Context, _ repository.Tx, entry *model.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memAccessLogRepo) ListRecent(ctx context.Context, _ repository.Tx, limit int) ([]*model.AccessLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AccessLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccessLogRepo) byAction(action model.AccessAction) []*model.AccessLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AccessLog
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// memUserRepo is a small in-memory UserRepository keyed by Telegram ID.
type memUserRepo struct {
	mu      sync.Mutex
	store   map[int64]*model.User
	saveErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, _ repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) CountUsers(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}
