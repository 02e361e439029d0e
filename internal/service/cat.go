// Package service holds the business rules that sit between the HTTP
// handlers and the repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
	"github.com/sakif/kittygram/internal/serializer"
)

type CatService struct {
	store      repository.Store
	serializer *serializer.CatSerializer
	logger     *slog.Logger
}

func NewCatService(store repository.Store, cats *serializer.CatSerializer, logger *slog.Logger) *CatService {
	return &CatService{
		store:      store,
		serializer: cats,
		logger:     logger,
	}
}

// errNotUnique is the validation error for a (name, owner) pair that is
// already taken.
func errNotUnique() error {
	return apperror.ValidationFailed(apperror.NonFieldErrors, serializer.MsgNameOwnerNotUnique)
}

// Create validates in and stores a cat owned by ownerID.
//
// Nothing is written unless every rule passes. When the payload carries an
// achievements key, the cat, every achievement it names (found or created
// by name) and one link per listed entry are written in one transaction:
// a failure anywhere leaves no trace, newly created achievements included.
// Without the key the cat is stored on its own.
func (s *CatService) Create(ctx context.Context, in serializer.CatInput, ownerID string) (*model.Cat, error) {
	data, err := s.serializer.Validate(in)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, data.Name, ownerID, ""); err != nil {
		return nil, err
	}

	cat := &model.Cat{
		Name:      data.Name,
		Color:     data.Color,
		BirthYear: data.BirthYear,
		OwnerID:   ownerID,
	}

	if !data.Achievements.Present {
		err = s.store.CreateCat(ctx, cat)
	} else {
		err = s.store.WithTx(ctx, func(tx repository.Store) error {
			return createWithAchievements(ctx, tx, cat, data.Achievements.Value)
		})
	}
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, errNotUnique()
		}
		s.logger.Error("failed to create cat",
			slog.String("name", cat.Name),
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating cat: %w", err)
	}

	s.logger.Info("cat created",
		slog.String("id", cat.ID),
		slog.String("name", cat.Name),
		slog.String("owner", ownerID),
		slog.Int("achievements", len(cat.Achievements)),
	)
	return cat, nil
}

func createWithAchievements(ctx context.Context, tx repository.Store, cat *model.Cat, names []string) error {
	if err := tx.CreateCat(ctx, cat); err != nil {
		return err
	}

	cat.Achievements = make([]model.Achievement, 0, len(names))
	for _, name := range names {
		a, _, err := tx.GetOrCreateAchievement(ctx, name)
		if err != nil {
			return err
		}
		if _, err := tx.LinkAchievement(ctx, cat.ID, a.ID); err != nil {
			return err
		}
		cat.Achievements = append(cat.Achievements, *a)
	}
	return nil
}

func (s *CatService) checkUnique(ctx context.Context, name, ownerID, excludeID string) error {
	exists, err := s.store.CatExists(ctx, name, ownerID, excludeID)
	if err != nil {
		return fmt.Errorf("checking cat uniqueness: %w", err)
	}
	if exists {
		return errNotUnique()
	}
	return nil
}

func (s *CatService) Get(ctx context.Context, id string) (*model.Cat, error) {
	return s.store.GetCat(ctx, id)
}

// List returns cats in creation order, only ownerID's when it is set.
func (s *CatService) List(ctx context.Context, ownerID string) ([]model.Cat, error) {
	cats, err := s.store.ListCats(ctx, repository.CatListOptions{OwnerID: ownerID})
	if err != nil {
		s.logger.Error("failed to list cats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cats: %w", err)
	}
	return cats, nil
}

// Update edits name, colour and birth year of a cat owned by userID. With
// partial set, fields missing from in keep their stored values. Owner and
// achievements cannot be changed.
func (s *CatService) Update(ctx context.Context, id string, in serializer.CatInput, userID string, partial bool) (*model.Cat, error) {
	cat, err := s.ownedCat(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.serializer.ValidateUpdate(cat, in, partial)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, data.Name, cat.OwnerID, cat.ID); err != nil {
		return nil, err
	}

	cat.Name = data.Name
	cat.Color = data.Color
	cat.BirthYear = data.BirthYear

	if err := s.store.UpdateCat(ctx, cat); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, errNotUnique()
		}
		return nil, fmt.Errorf("updating cat %s: %w", id, err)
	}

	s.logger.Info("cat updated", slog.String("id", cat.ID), slog.Bool("partial", partial))
	return cat, nil
}

// Delete removes a cat owned by userID.
func (s *CatService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.ownedCat(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteCat(ctx, id); err != nil {
		return fmt.Errorf("deleting cat %s: %w", id, err)
	}

	s.logger.Info("cat deleted", slog.String("id", id))
	return nil
}

func (s *CatService) ownedCat(ctx context.Context, id, userID string) (*model.Cat, error) {
	cat, err := s.store.GetCat(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat.OwnerID != userID {
		return nil, apperror.Forbidden("you do not have permission to perform this action")
	}
	return cat, nil
}
