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

const userColumns = `id, username, first_name, last_name, password_hash`

// CreateUser inserts user and fills in its ID. A taken username yields
// apperror.ErrConflict.
func (q *queries) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	_, err := q.ext.ExecContext(ctx,
		`INSERT INTO users (id, username, first_name, last_name, password_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByID returns apperror.ErrNotFound if no user has that ID.
func (q *queries) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := q.ext.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := q.ext.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return &u, nil
}

func (q *queries) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := q.ext.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	return users, nil
}

func (q *queries) ListCatNames(ctx context.Context, ownerID string) ([]string, error) {
	names := []string{}
	err := q.ext.SelectContext(ctx, &names,
		`SELECT name FROM cats WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cat names for %s: %w", ownerID, err)
	}
	return names, nil
}
