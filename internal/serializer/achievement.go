package serializer

import (
	"encoding/json"

	"github.com/sakif/kittygram/internal/model"
)

// AchievementView is the public shape of an achievement. The stored name
// is exposed as achievement_name.
type AchievementView struct {
	ID              string `json:"id"`
	AchievementName string `json:"achievement_name"`
}

func RepresentAchievement(a model.Achievement) AchievementView {
	return AchievementView{ID: a.ID, AchievementName: a.Name}
}

func RepresentAchievements(as []model.Achievement) []AchievementView {
	views := make([]AchievementView, 0, len(as))
	for _, a := range as {
		views = append(views, RepresentAchievement(a))
	}
	return views
}

// AchievementInput is one nested achievement in a cat payload. It reads
// the representation key achievement_name and also accepts the plain
// attribute key name; achievement_name wins when both are sent.
type AchievementInput struct {
	Name string `json:"achievement_name"`
}

func (a *AchievementInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		AchievementName *string `json:"achievement_name"`
		Name            *string `json:"name"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.AchievementName != nil:
		a.Name = *raw.AchievementName
	case raw.Name != nil:
		a.Name = *raw.Name
	}
	return nil
}
