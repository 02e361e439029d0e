package serializer

import (
	"strings"

	"github.com/sakif/kittygram/internal/model"
)

// UserView is the read-only public shape of a user. Cats holds the names
// of the user's cats in storage order.
type UserView struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Cats      []string `json:"cats"`
}

func RepresentUser(u *model.User, catNames []string) UserView {
	if catNames == nil {
		catNames = []string{}
	}
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Cats:      catNames,
	}
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// ValidateRegistration trims the name fields and returns every field
// problem at once, or nil.
func ValidateRegistration(in *RegisterInput) map[string][]string {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	errs := fieldErrors{}
	errs.checkStruct(in)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CredentialsInput is the payload for obtaining a token.
type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
