package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
)

const catColumns = `id, name, color, birth_year, owner_id`

// CreateCat inserts cat and fills in its ID. A (name, owner) pair that is
// already taken yields apperror.ErrConflict.
func (q *queries) CreateCat(ctx context.Context, cat *model.Cat) error {
	cat.ID = xid.New().String()

	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO cats (id, name, color, birth_year, owner_id)
		 VALUES (?, ?, ?, ?, ?)`,
		cat.ID,
		cat.Name,
		cat.Color,
		cat.BirthYear,
		cat.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("cat", cat.Name)
		}
		return fmt.Errorf("sqlite: inserting cat %q: %w", cat.Name, err)
	}

	if cat.Achievements == nil {
		cat.Achievements = []model.Achievement{}
	}
	return nil
}

// GetCat returns the cat with its achievements in link order.
func (q *queries) GetCat(ctx context.Context, id string) (*model.Cat, error) {
	var c model.Cat
	err := q.ext.GetContext(ctx, &c, `SELECT `+catColumns+` FROM cats WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("cat", id)
		}
		return nil, fmt.Errorf("sqlite: getting cat %s: %w", id, err)
	}

	cats := []model.Cat{c}
	if err := q.attachAchievements(ctx, cats); err != nil {
		return nil, err
	}
	return &cats[0], nil
}

func (q *queries) ListCats(ctx context.Context, opts repository.CatListOptions) ([]model.Cat, error) {
	cats := []model.Cat{}

	var err error
	if opts.OwnerID != "" {
		err = q.ext.SelectContext(ctx, &cats,
			`SELECT `+catColumns+` FROM cats WHERE owner_id = ? ORDER BY rowid`, opts.OwnerID)
	} else {
		err = q.ext.SelectContext(ctx, &cats, `SELECT `+catColumns+` FROM cats ORDER BY rowid`)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cats: %w", err)
	}

	if err := q.attachAchievements(ctx, cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// UpdateCat rewrites the editable columns. Owner never changes.
func (q *queries) UpdateCat(ctx context.Context, cat *model.Cat) error {
	result, err := q.ext.ExecContext(ctx,
		`UPDATE cats SET name = ?, color = ?, birth_year = ? WHERE id = ?`,
		cat.Name,
		cat.Color,
		cat.BirthYear,
		cat.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("cat", cat.Name)
		}
		return fmt.Errorf("sqlite: updating cat %s: %w", cat.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("cat", cat.ID)
	}
	return nil
}

// DeleteCat removes the cat; its achievement links go with it (ON DELETE
// CASCADE). Achievements themselves are kept for reuse.
func (q *queries) DeleteCat(ctx context.Context, id string) error {
	result, err := q.ext.ExecContext(ctx, `DELETE FROM cats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting cat %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("cat", id)
	}
	return nil
}

func (q *queries) CatExists(ctx context.Context, name, ownerID, excludeID string) (bool, error) {
	var exists bool
	err := q.ext.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM cats WHERE name = ? AND owner_id = ? AND id != ?)`,
		name, ownerID, excludeID)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking cat %q for owner %s: %w", name, ownerID, err)
	}
	return exists, nil
}

// catAchievementRow is one row of the achievements-per-cat join.
type catAchievementRow struct {
	CatID string `db:"cat_id"`
	ID    string `db:"id"`
	Name  string `db:"name"`
}

// attachAchievements loads the achievements of every cat in one query and
// fills cats[i].Achievements in link order.
func (q *queries) attachAchievements(ctx context.Context, cats []model.Cat) error {
	if len(cats) == 0 {
		return nil
	}

	ids := make([]string, len(cats))
	index := make(map[string]int, len(cats))
	for i := range cats {
		ids[i] = cats[i].ID
		index[cats[i].ID] = i
		cats[i].Achievements = []model.Achievement{}
	}

	query, args, err := sqlx.In(
		`SELECT ac.cat_id, a.id, a.name
		 FROM achievement_cats ac
		 JOIN achievements a ON a.id = ac.achievement_id
		 WHERE ac.cat_id IN (?)
		 ORDER BY ac.rowid`, ids)
	if err != nil {
		return fmt.Errorf("sqlite: building achievements query: %w", err)
	}

	var rows []catAchievementRow
	if err := q.ext.SelectContext(ctx, &rows, q.ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("sqlite: loading cat achievements: %w", err)
	}

	for _, r := range rows {
		i := index[r.CatID]
		cats[i].Achievements = append(cats[i].Achievements, model.Achievement{ID: r.ID, Name: r.Name})
	}
	return nil
}
