package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
)

// newTestDB returns a fresh in-memory database with the schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, FirstName: "Test", LastName: "User", PasswordHash: "x"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCat(t *testing.T, db *DB, name, ownerID string) *model.Cat {
	t.Helper()
	cat := &model.Cat{Name: name, Color: "Gray", BirthYear: 2020, OwnerID: ownerID}
	if err := db.CreateCat(context.Background(), cat); err != nil {
		t.Fatalf("failed to create test cat: %v", err)
	}
	return cat
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Running the migrator again on the same connection must be a no-op.
	if err := runMigrations(db.conn.DB); err != nil {
		t.Fatalf("second runMigrations() error = %v", err)
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "committer")
	ctx := context.Background()

	var catID string
	err := db.WithTx(ctx, func(s repository.Store) error {
		cat := &model.Cat{Name: "Tom", Color: "Black", BirthYear: 2019, OwnerID: owner.ID}
		if err := s.CreateCat(ctx, cat); err != nil {
			return err
		}
		catID = cat.ID
		a, _, err := s.GetOrCreateAchievement(ctx, "Brave")
		if err != nil {
			return err
		}
		_, err = s.LinkAchievement(ctx, cat.ID, a.ID)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	cat, err := db.GetCat(ctx, catID)
	if err != nil {
		t.Fatalf("GetCat() error = %v", err)
	}
	if len(cat.Achievements) != 1 || cat.Achievements[0].Name != "Brave" {
		t.Errorf("Achievements = %+v, want [Brave]", cat.Achievements)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "rollback")
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(s repository.Store) error {
		cat := &model.Cat{Name: "Ghost", Color: "White", BirthYear: 2019, OwnerID: owner.ID}
		if err := s.CreateCat(ctx, cat); err != nil {
			return err
		}
		if _, _, err := s.GetOrCreateAchievement(ctx, "Phantom"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	cats, err := db.ListCats(ctx, repository.CatListOptions{})
	if err != nil {
		t.Fatalf("ListCats() error = %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("ListCats() returned %d cats after rollback, want 0", len(cats))
	}

	achievements, err := db.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("ListAchievements() error = %v", err)
	}
	if len(achievements) != 0 {
		t.Errorf("ListAchievements() returned %d after rollback, want 0", len(achievements))
	}
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "nested")
	ctx := context.Background()
	boom := errors.New("outer failure")

	err := db.WithTx(ctx, func(s repository.Store) error {
		if err := s.WithTx(ctx, func(inner repository.Store) error {
			return inner.CreateCat(ctx, &model.Cat{Name: "Inner", Color: "Gray", BirthYear: 2020, OwnerID: owner.ID})
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	names, err := db.ListCatNames(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListCatNames() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("inner write survived outer rollback: %v", names)
	}
}
