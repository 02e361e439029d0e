package service

import (
	"context"
	"fmt"

	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
)

// AchievementService is read-only: achievements are only ever created as a
// side effect of creating a cat.
type AchievementService struct {
	repo repository.AchievementRepository
}

func NewAchievementService(repo repository.AchievementRepository) *AchievementService {
	return &AchievementService{repo: repo}
}

func (s *AchievementService) Get(ctx context.Context, id string) (*model.Achievement, error) {
	return s.repo.GetAchievement(ctx, id)
}

func (s *AchievementService) List(ctx context.Context) ([]model.Achievement, error) {
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	return achievements, nil
}
