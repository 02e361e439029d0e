package repository

import (
	"context"

	"github.com/sakif/kittygram/internal/model"
)

// CatListOptions narrows a cat listing. Zero value lists every cat.
type CatListOptions struct {
	OwnerID string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// ListCatNames returns the names of the owner's cats in insertion order.
	ListCatNames(ctx context.Context, ownerID string) ([]string, error)
}

type CatRepository interface {
	CreateCat(ctx context.Context, cat *model.Cat) error
	GetCat(ctx context.Context, id string) (*model.Cat, error)
	ListCats(ctx context.Context, opts CatListOptions) ([]model.Cat, error)
	UpdateCat(ctx context.Context, cat *model.Cat) error
	DeleteCat(ctx context.Context, id string) error
	// CatExists reports whether ownerID already has a cat called name,
	// ignoring the cat with excludeID (empty to ignore nothing).
	CatExists(ctx context.Context, name, ownerID, excludeID string) (bool, error)
}

type AchievementRepository interface {
	// GetOrCreateAchievement returns the achievement called name, inserting
	// it first if needed. created is true when this call inserted it.
	GetOrCreateAchievement(ctx context.Context, name string) (a *model.Achievement, created bool, err error)
	GetAchievement(ctx context.Context, id string) (*model.Achievement, error)
	ListAchievements(ctx context.Context) ([]model.Achievement, error)
	LinkAchievement(ctx context.Context, catID, achievementID string) (*model.AchievementCat, error)
}

// Store groups every repository and can run a function inside a single
// transaction. Inside fn, all calls go through the transactional Store.
type Store interface {
	UserRepository
	CatRepository
	AchievementRepository

	WithTx(ctx context.Context, fn func(Store) error) error
}
