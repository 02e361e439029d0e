package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/kittygram/internal/apperror"
	"github.com/sakif/kittygram/internal/auth"
	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/repository"
	"github.com/sakif/kittygram/internal/serializer"
)

const msgBadCredentials = "No active account found with the given credentials"

// UserProfile is a user together with the names of the cats they own.
type UserProfile struct {
	User     *model.User
	CatNames []string
}

type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates an account. A taken username is a validation error on
// the username field.
func (s *UserService) Register(ctx context.Context, in serializer.RegisterInput) (*model.User, error) {
	if errs := serializer.ValidateRegistration(&in); errs != nil {
		return nil, apperror.Invalid(errs)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", serializer.MsgUsernameTaken)
		}
		return nil, fmt.Errorf("service/user: creating user %q: %w", in.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks credentials and returns a signed access token. Unknown
// usernames and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, in serializer.CredentialsInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		errs := map[string][]string{}
		if in.Username == "" {
			errs["username"] = []string{serializer.MsgBlank}
		}
		if in.Password == "" {
			errs["password"] = []string{serializer.MsgBlank}
		}
		return "", apperror.Invalid(errs)
	}

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized(msgBadCredentials)
		}
		return "", fmt.Errorf("service/user: fetching user %q: %w", in.Username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("failed login", slog.String("username", in.Username))
			return "", apperror.Unauthorized(msgBadCredentials)
		}
		return "", fmt.Errorf("service/user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/user: generating token for user %s: %w", user.ID, err)
	}
	return token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *UserService) List(ctx context.Context) ([]UserProfile, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}

	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		p, err := s.profile(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func (s *UserService) profile(ctx context.Context, user *model.User) (*UserProfile, error) {
	names, err := s.users.ListCatNames(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing cats of %s: %w", user.ID, err)
	}
	return &UserProfile{User: user, CatNames: names}, nil
}
