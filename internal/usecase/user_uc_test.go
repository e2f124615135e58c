//go:build !integration

package usecase

import (
	"context"
	"testing"
	"time"
)

func TestUserUseCase_RegisterOrFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new user on first contact", func(t *testing.T) {
		users := newMemUserRepo()
		uc := NewUserUseCase(users, newMockTxManager(), newTestLogger())

		u, err := uc.RegisterOrFetch(ctx, 12345, "first_user")
		if err != nil {
			t.Fatalf("RegisterOrFetch failed: %v", err)
		}
		if u.IsZero() {
			t.Fatal("expected a populated user")
		}
		if u.TelegramID != 12345 || u.Username != "first_user" {
			t.Errorf("unexpected user: %+v", u)
		}

		stored, err := users.FindByTelegramID(ctx, nil, 12345)
		if err != nil {
			t.Fatalf("user not persisted: %v", err)
		}
		if stored.ID != u.ID {
			t.Error("stored user differs from returned one")
		}
	})

	t.Run("fetches an existing user and refreshes username and activity", func(t *testing.T) {
		users := newMemUserRepo()
		uc := NewUserUseCase(users, newMockTxManager(), newTestLogger())

		first, err := uc.RegisterOrFetch(ctx, 12345, "old_name")
		if err != nil {
			t.Fatalf("first contact: %v", err)
		}
		firstSeen := first.FirstSeenAt
		time.Sleep(5 * time.Millisecond)

		second, err := uc.RegisterOrFetch(ctx, 12345, "new_name")
		if err != nil {
			t.Fatalf("second contact: %v", err)
		}
		if second.ID != first.ID {
			t.Error("expected the same user record")
		}
		if second.Username != "new_name" {
			t.Errorf("expected username update, got %q", second.Username)
		}
		if !second.LastActiveAt.After(firstSeen) {
			t.Error("expected last_active_at to advance")
		}
		if !second.FirstSeenAt.Equal(firstSeen) {
			t.Error("first_seen_at must not change")
		}
	})

	t.Run("keeps the stored username when the update is empty", func(t *testing.T) {
		users := newMemUserRepo()
		uc := NewUserUseCase(users, newMockTxManager(), newTestLogger())

		if _, err := uc.RegisterOrFetch(ctx, 12345, "somebody"); err != nil {
			t.Fatalf("first contact: %v", err)
		}
		u, err := uc.RegisterOrFetch(ctx, 12345, "")
		if err != nil {
			t.Fatalf("second contact: %v", err)
		}
		if u.Username != "somebody" {
			t.Errorf("expected username to stick, got %q", u.Username)
		}
	})

	t.Run("propagates save failures", func(t *testing.T) {
		users := newMemUserRepo()
		users.saveErr = context.DeadlineExceeded
		uc := NewUserUseCase(users, newMockTxManager(), newTestLogger())

		if _, err := uc.RegisterOrFetch(ctx, 12345, "whoever"); err == nil {
			t.Fatal("expected an error from a failing store")
		}
	})
}

func TestUserUseCase_Count(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	uc := NewUserUseCase(users, newMockTxManager(), newTestLogger())

	for i := int64(1); i <= 3; i++ {
		if _, err := uc.RegisterOrFetch(ctx, i, "u"); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	n, err := uc.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 users, got %d", n)
	}
}
