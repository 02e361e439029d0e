package model

// Color is one of the fixed coat colours a cat may have.
type Color string

const (
	ColorGray   Color = "Gray"
	ColorBlack  Color = "Black"
	ColorWhite  Color = "White"
	ColorGinger Color = "Ginger"
	ColorMixed  Color = "Mixed"
)

// Choices lists every accepted colour in display order, with its label.
var Choices = []struct {
	Value Color
	Label string
}{
	{ColorGray, "Серый"},
	{ColorBlack, "Чёрный"},
	{ColorWhite, "Белый"},
	{ColorGinger, "Рыжий"},
	{ColorMixed, "Смешанный"},
}

// IsValidColor reports whether s is one of Choices.
func IsValidColor(s string) bool {
	for _, c := range Choices {
		if string(c.Value) == s {
			return true
		}
	}
	return false
}

// Cat is a stored cat. Age is not stored; it is derived from BirthYear
// whenever the cat is represented.
type Cat struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	BirthYear int    `db:"birth_year"`
	OwnerID   string `db:"owner_id"`

	// Achievements is filled by the repository on reads; it has no column.
	Achievements []Achievement `db:"-"`
}

// Achievement is a named accolade shared between cats. Name is unique.
type Achievement struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// AchievementCat links one cat to one achievement.
type AchievementCat struct {
	ID            string `db:"id"`
	CatID         string `db:"cat_id"`
	AchievementID string `db:"achievement_id"`
}

// Field length limits shared by validation and the schema.
const (
	MaxCatNameLength         = 16
	MaxAchievementNameLength = 64
	MaxUsernameLength        = 150
	MaxPersonNameLength      = 150
)
