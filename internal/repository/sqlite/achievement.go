package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/model"
)

// GetOrCreateAchievement relies on the UNIQUE index on achievements.name:
// the insert is a no-op when the name exists, so two concurrent callers
// always end up reading the same row.
func (q *queries) GetOrCreateAchievement(ctx context.Context, name string) (*model.Achievement, bool, error) {
	result, err := q.ext.ExecContext(ctx,
		`INSERT INTO achievements (id, name) VALUES (?, ?)
		 ON CONFLICT (name) DO NOTHING`,
		xid.New().String(), name)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: inserting achievement %q: %w", name, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	var a model.Achievement
	if err := q.ext.GetContext(ctx, &a, `SELECT id, name FROM achievements WHERE name = ?`, name); err != nil {
		return nil, false, fmt.Errorf("sqlite: reading achievement %q: %w", name, err)
	}
	return &a, inserted == 1, nil
}

func (q *queries) GetAchievement(ctx context.Context, id string) (*model.Achievement, error) {
	var a model.Achievement
	err := q.ext.GetContext(ctx, &a, `SELECT id, name FROM achievements WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("achievement", id)
		}
		return nil, fmt.Errorf("sqlite: getting achievement %s: %w", id, err)
	}
	return &a, nil
}

func (q *queries) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	achievements := []model.Achievement{}
	if err := q.ext.SelectContext(ctx, &achievements, `SELECT id, name FROM achievements ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("sqlite: listing achievements: %w", err)
	}
	return achievements, nil
}

// LinkAchievement inserts one join row. The same pair may be linked more
// than once.
func (q *queries) LinkAchievement(ctx context.Context, catID, achievementID string) (*model.AchievementCat, error) {
	link := &model.AchievementCat{
		ID:            xid.New().String(),
		CatID:         catID,
		AchievementID: achievementID,
	}

	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO achievement_cats (id, cat_id, achievement_id) VALUES (?, ?, ?)`,
		link.ID, link.CatID, link.AchievementID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: linking achievement %s to cat %s: %w", achievementID, catID, err)
	}
	return link, nil
}
