package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/kittygram/internal/apperror"
)

func TestGetOrCreateAchievement(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, created, err := db.GetOrCreateAchievement(ctx, "Brave")
	if err != nil {
		t.Fatalf("GetOrCreateAchievement() error = %v", err)
	}
	if !created {
		t.Error("first call: created = false, want true")
	}

	second, created, err := db.GetOrCreateAchievement(ctx, "Brave")
	if err != nil {
		t.Fatalf("GetOrCreateAchievement() error = %v", err)
	}
	if created {
		t.Error("second call: created = true, want false")
	}
	if second.ID != first.ID {
		t.Errorf("second ID = %q, want %q", second.ID, first.ID)
	}

	all, err := db.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("ListAchievements() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListAchievements() returned %d, want 1", len(all))
	}
}

func TestGetOrCreateAchievement_CaseSensitive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, _, _ := db.GetOrCreateAchievement(ctx, "Brave")
	b, created, err := db.GetOrCreateAchievement(ctx, "brave")
	if err != nil {
		t.Fatalf("GetOrCreateAchievement() error = %v", err)
	}
	if !created || a.ID == b.ID {
		t.Error("names differing only in case should be distinct achievements")
	}
}

func TestGetAchievement_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAchievement(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAchievement() error = %v, want ErrNotFound", err)
	}
}

func TestLinkAchievement_AllowsDuplicatePairs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	cat := createTestCat(t, db, "Tom", owner.ID)
	a, _, _ := db.GetOrCreateAchievement(ctx, "Brave")

	l1, err := db.LinkAchievement(ctx, cat.ID, a.ID)
	if err != nil {
		t.Fatalf("LinkAchievement() error = %v", err)
	}
	l2, err := db.LinkAchievement(ctx, cat.ID, a.ID)
	if err != nil {
		t.Fatalf("second LinkAchievement() error = %v", err)
	}
	if l1.ID == l2.ID {
		t.Error("links share an ID")
	}

	found, err := db.GetCat(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCat() error = %v", err)
	}
	if len(found.Achievements) != 2 {
		t.Errorf("len(Achievements) = %d, want 2", len(found.Achievements))
	}
}

func TestLinkAchievement_UnknownCat(t *testing.T) {
	db := newTestDB(t)
	a, _, _ := db.GetOrCreateAchievement(context.Background(), "Brave")

	if _, err := db.LinkAchievement(context.Background(), "no-such-cat", a.ID); err == nil {
		t.Error("LinkAchievement() accepted a dangling cat id")
	}
}
