package serializer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/model"
)

// MaxCatAge bounds how far back a birth year may go.
const MaxCatAge = 40

// CatInput is a create or update payload. Pointer fields are nil when the
// key was not sent, which matters for partial updates. Owner is never read
// from the payload.
type CatInput struct {
	Name         *string                      `json:"name"`
	Color        *string                      `json:"color"`
	BirthYear    *int                         `json:"birth_year"`
	Achievements Optional[[]AchievementInput] `json:"achievements"`
}

// CatData is a CatInput that passed field and object validation.
// Achievements keeps the presence of the key: absent and an empty list
// are different inputs even though both link nothing.
type CatData struct {
	Name         string
	Color        string
	BirthYear    int
	Achievements Optional[[]string]
}

// CatView is the public shape of a cat.
type CatView struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Color        string            `json:"color"`
	BirthYear    int               `json:"birth_year"`
	Achievements []AchievementView `json:"achievements"`
	Owner        string            `json:"owner"`
	Age          int               `json:"age"`
}

// CatSerializer validates cat payloads and renders cats. Its clock decides
// the current year for both the birth year rule and the derived age.
type CatSerializer struct {
	now func() time.Time
}

// NewCatSerializer uses time.Now when now is nil.
func NewCatSerializer(now func() time.Time) *CatSerializer {
	if now == nil {
		now = time.Now
	}
	return &CatSerializer{now: now}
}

func (s *CatSerializer) CurrentYear() int {
	return s.now().Year()
}

// ValidBirthYear reports whether year lies in (currentYear-40, currentYear].
func ValidBirthYear(year, currentYear int) bool {
	return currentYear-MaxCatAge < year && year <= currentYear
}

// Validate checks a create payload: every field rule first, collected
// together, then the name/colour rule. Uniqueness needs storage and is
// left to the caller.
func (s *CatSerializer) Validate(in CatInput) (*CatData, error) {
	return s.validate(in)
}

// ValidateUpdate checks an update of existing. With partial set, missing
// fields keep their stored values; otherwise they are required as on
// create. Achievements are not editable and are ignored.
func (s *CatSerializer) ValidateUpdate(existing *model.Cat, in CatInput, partial bool) (*CatData, error) {
	if partial {
		if in.Name == nil {
			in.Name = &existing.Name
		}
		if in.Color == nil {
			in.Color = &existing.Color
		}
		if in.BirthYear == nil {
			in.BirthYear = &existing.BirthYear
		}
	}
	in.Achievements = Optional[[]AchievementInput]{}
	return s.validate(in)
}

func (s *CatSerializer) validate(in CatInput) (*CatData, error) {
	errs := fieldErrors{}

	var name string
	if in.Name == nil {
		errs.add("name", MsgRequired)
	} else {
		name = strings.TrimSpace(*in.Name)
		errs.check("name", name, fmt.Sprintf("required,max=%d", model.MaxCatNameLength))
	}

	if in.Color == nil {
		errs.add("color", MsgRequired)
	} else {
		errs.check("color", *in.Color, "required,color")
	}

	if in.BirthYear == nil {
		errs.add("birth_year", MsgRequired)
	} else if !ValidBirthYear(*in.BirthYear, s.CurrentYear()) {
		errs.add("birth_year", MsgBirthYear)
	}

	var names []string
	if in.Achievements.Present {
		if in.Achievements.Null {
			errs.add("achievements", MsgNull)
		}
		names = make([]string, 0, len(in.Achievements.Value))
		for i, a := range in.Achievements.Value {
			n := strings.TrimSpace(a.Name)
			errs.check(fmt.Sprintf("achievements[%d].achievement_name", i), n,
				fmt.Sprintf("required,max=%d", model.MaxAchievementNameLength))
			names = append(names, n)
		}
	}

	if len(errs) > 0 {
		return nil, apperror.Invalid(errs)
	}

	data := &CatData{
		Name:      name,
		Color:     *in.Color,
		BirthYear: *in.BirthYear,
	}
	if in.Achievements.Present {
		data.Achievements = Some(names)
	}

	if data.Color == data.Name {
		return nil, apperror.ValidationFailed(apperror.NonFieldErrors, MsgNameEqualsColor)
	}
	return data, nil
}

// Represent renders c with its age computed from the serializer's clock.
func (s *CatSerializer) Represent(c *model.Cat) CatView {
	return CatView{
		ID:           c.ID,
		Name:         c.Name,
		Color:        c.Color,
		BirthYear:    c.BirthYear,
		Achievements: RepresentAchievements(c.Achievements),
		Owner:        c.OwnerID,
		Age:          s.CurrentYear() - c.BirthYear,
	}
}

func (s *CatSerializer) RepresentMany(cats []model.Cat) []CatView {
	views := make([]CatView, 0, len(cats))
	for i := range cats {
		views = append(views, s.Represent(&cats[i]))
	}
	return views
}
