package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/auth"
	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
	"github.com/sakif/kittygram/internal/repository/sqlite"
	"github.com/sakif/kittygram/internal/serializer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// testClock pins the current year to 2024.
func testClock() time.Time {
	return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
}

func newTestCatService(store repository.Store) *CatService {
	return NewCatService(store, serializer.NewCatSerializer(testClock), testLogger())
}

func newTestUserService(t *testing.T, users repository.UserRepository) *UserService {
	t.Helper()
	tokens, err := auth.NewTokenService("service-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	return NewUserService(users, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), testLogger())
}

func createUser(t *testing.T, store repository.UserRepository, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

func catInput(name, color string, year int) serializer.CatInput {
	return serializer.CatInput{Name: ptr(name), Color: ptr(color), BirthYear: ptr(year)}
}

func withAchievements(in serializer.CatInput, names ...string) serializer.CatInput {
	items := make([]serializer.AchievementInput, 0, len(names))
	for _, n := range names {
		items = append(items, serializer.AchievementInput{Name: n})
	}
	in.Achievements = serializer.Some(items)
	return in
}

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	require.ErrorIs(t, err, apperror.ErrValidation)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, []string{msg}, appErr.Fields[field], "fields: %v", appErr.Fields)
}
