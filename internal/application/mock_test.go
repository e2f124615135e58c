//go:build !integration

package application

import (
	"context"
	"time"

	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/adapter"
	"telegram-nfc-access/internal/usecase"
)

// --- Function-field mocks for the facade's collaborators ---

type mockUserUC struct {
	RegisterOrFetchFunc func(ctx context.Context, tgID int64, username string) (*model.User, error)
}

func (m *mockUserUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	if m.RegisterOrFetchFunc != nil {
		return m.RegisterOrFetchFunc(ctx, tgID, username)
	}
	return model.NewUser("", tgID, username)
}

func (m *mockUserUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	return model.NewUser("", tgID, "mock")
}

func (m *mockUserUC) Count(ctx context.Context) (int, error) { return 0, nil }

type mockClaimUC struct {
	AttemptClaimFunc   func(ctx context.Context, code string, tgID int64) (*usecase.ClaimResult, error)
	LatestClaimForFunc func(ctx context.Context, tgID int64) (*model.Key, error)

	inviteRecords []string // reasons passed to RecordInviteIssued
}

func (m *mockClaimUC) AttemptClaim(ctx context.Context, code string, tgID int64) (*usecase.ClaimResult, error) {
	return m.AttemptClaimFunc(ctx, code, tgID)
}

func (m *mockClaimUC) LatestClaimFor(ctx context.Context, tgID int64) (*model.Key, error) {
	return m.LatestClaimForFunc(ctx, tgID)
}

func (m *mockClaimUC) RecordInviteIssued(ctx context.Context, tgID int64, code, reason string) error {
	m.inviteRecords = append(m.inviteRecords, reason)
	return nil
}

type mockAdminUC struct {
	GenerateFunc   func(ctx context.Context, count int, productID *string) ([]string, error)
	RevokeFunc     func(ctx context.Context, code string) error
	InspectFunc    func(ctx context.Context, code string) (*model.Key, error)
	RecentLogsFunc func(ctx context.Context, limit int) ([]*model.AccessLog, error)
}

func (m *mockAdminUC) Generate(ctx context.Context, count int, productID *string) ([]string, error) {
	return m.GenerateFunc(ctx, count, productID)
}

func (m *mockAdminUC) Revoke(ctx context.Context, code string) error {
	return m.RevokeFunc(ctx, code)
}

func (m *mockAdminUC) Inspect(ctx context.Context, code string) (*model.Key, error) {
	return m.InspectFunc(ctx, code)
}

func (m *mockAdminUC) RecentLogs(ctx context.Context, limit int) ([]*model.AccessLog, error) {
	return m.RecentLogsFunc(ctx, limit)
}

// mockIssuer implements the Telegram adapter port for invite issuance.
type mockIssuer struct {
	CreateInviteLinkFunc func(ctx context.Context, chatID int64, name string, expiresAt time.Time, memberLimit int) (*adapter.InviteLink, error)

	created int
}

func (m *mockIssuer) SendMessage(ctx context.Context, tgID int64, text string) error { return nil }

func (m *mockIssuer) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	return nil
}

func (m *mockIssuer) CreateInviteLink(ctx context.Context, chatID int64, name string, expiresAt time.Time, memberLimit int) (*adapter.InviteLink, error) {
	m.created++
	if m.CreateInviteLinkFunc != nil {
		return m.CreateInviteLinkFunc(ctx, chatID, name, expiresAt, memberLimit)
	}
	return &adapter.InviteLink{URL: "https://t.me/+mock-invite", ExpiresAt: expiresAt}, nil
}

func (m *mockIssuer) Username() string { return "vip_access_bot" }
