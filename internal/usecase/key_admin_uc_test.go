//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
)

func TestKeyAdminUseCase_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("produces the requested number of distinct codes", func(t *testing.T) {
		keys := newMemKeyRepo()
		uc := NewKeyAdminUseCase(keys, newMemAccessLogRepo(), newTestLogger())

		const n = 50
		codes, err := uc.Generate(ctx, n, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(codes) != n {
			t.Fatalf("expected %d codes, got %d", n, len(codes))
		}

		seen := make(map[string]bool, n)
		for _, c := range codes {
			if len(c) != model.CodeLength {
				t.Errorf("code %q has wrong length", c)
			}
			if seen[c] {
				t.Errorf("duplicate code %q in batch", c)
			}
			seen[c] = true

			stored, err := keys.FindByCode(ctx, nil, c)
			if err != nil {
				t.Fatalf("generated code %q not stored: %v", c, err)
			}
			if stored.Status != model.KeyStatusNew {
				t.Errorf("expected status new, got %s", stored.Status)
			}
			if stored.OwnerUserID != nil {
				t.Error("fresh key must have no owner")
			}
		}
	})

	t.Run("attaches the product label", func(t *testing.T) {
		keys := newMemKeyRepo()
		uc := NewKeyAdminUseCase(keys, newMemAccessLogRepo(), newTestLogger())

		product := "SKU-42"
		codes, err := uc.Generate(ctx, 3, &product)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for _, c := range codes {
			stored, _ := keys.FindByCode(ctx, nil, c)
			if stored.ProductID == nil || *stored.ProductID != product {
				t.Errorf("expected product %q on %q", product, c)
			}
		}
	})

	t.Run("rejects a non-positive count", func(t *testing.T) {
		uc := NewKeyAdminUseCase(newMemKeyRepo(), newMemAccessLogRepo(), newTestLogger())
		if _, err := uc.Generate(ctx, 0, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("propagates storage failures", func(t *testing.T) {
		keys := newMemKeyRepo()
		keys.insertErr = errors.New("connection refused")
		uc := NewKeyAdminUseCase(keys, newMemAccessLogRepo(), newTestLogger())

		if _, err := uc.Generate(ctx, 1, nil); err == nil {
			t.Fatal("expected an error from a failing store")
		}
	})
}

func TestKeyAdminUseCase_Revoke(t *testing.T) {
	ctx := context.Background()
	keys := newMemKeyRepo()
	uc := NewKeyAdminUseCase(keys, newMemAccessLogRepo(), newTestLogger())

	seedKey(t, keys, "ABC123456789")

	if err := uc.Revoke(ctx, "ABC123456789"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	stored, _ := keys.FindByCode(ctx, nil, "ABC123456789")
	if stored.Status != model.KeyStatusRevoked {
		t.Errorf("expected status revoked, got %s", stored.Status)
	}

	// Revoking again stays revoked; there is no way back.
	if err := uc.Revoke(ctx, "ABC123456789"); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}

	if err := uc.Revoke(ctx, "NOPE00000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := uc.Revoke(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestKeyAdminUseCase_InspectAndLogs(t *testing.T) {
	ctx := context.Background()
	keys := newMemKeyRepo()
	logs := newMemAccessLogRepo()
	uc := NewKeyAdminUseCase(keys, logs, newTestLogger())

	seedKey(t, keys, "ABC123456789")

	key, err := uc.Inspect(ctx, "ABC123456789")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if key.Code != "ABC123456789" || key.Status != model.KeyStatusNew {
		t.Errorf("unexpected key: %+v", key)
	}
	if _, err := uc.Inspect(ctx, "NOPE00000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 5; i++ {
		entry := model.NewAccessLog(int64(i), "ABC123456789", model.AccessActionAttempt, model.ReasonStartParam)
		if err := logs.Append(ctx, nil, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := uc.RecentLogs(ctx, 3)
	if err != nil {
		t.Fatalf("RecentLogs failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	if recent[0].TelegramID != 4 {
		t.Errorf("expected newest entry first, got tg_id %d", recent[0].TelegramID)
	}

	// A non-positive limit falls back to the default page size.
	recent, err = uc.RecentLogs(ctx, 0)
	if err != nil {
		t.Fatalf("RecentLogs with default limit failed: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected all 5 entries, got %d", len(recent))
	}
}
