package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"conduit/internal/auth"
	"conduit/internal/model"
	"conduit/internal/repository"
)

// TokenSigner issues a session token for a user id.
type TokenSigner interface {
	Issue(userID string) (string, error)
}

// UserService handles registration, login and account updates.
type UserService struct {
	repo   repository.UserRepository
	tokens TokenSigner
	hasher CredentialHasher
}

func NewUserService(repo repository.UserRepository, tokens TokenSigner, hasher CredentialHasher) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
	}
}

func required(subject, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.InvalidRequest(subject, "can't be blank")
	}
	return nil
}

// uniqueUserErr maps store conflicts to the user-facing violation.
func uniqueUserErr(err error) error {
	switch {
	case errors.Is(err, model.ErrUsernameExists):
		return model.InvalidRequest("Username", "already in use")
	case errors.Is(err, model.ErrEmailExists):
		return model.InvalidRequest("Email", "already in use")
	}
	return nil
}

// Register creates an account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in model.NewUser) (*model.UserView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	for _, err := range []error{
		required("Username", in.Username),
		required("Email", in.Email),
		required("Password", in.Password),
	} {
		if err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.InvalidRequest("Username", "already in use")
	}

	exists, err = s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.InvalidRequest("Email", "already in use")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHashed: hashed,
	}

	// The unique indexes still decide when two registrations race
	if err := s.repo.Create(ctx, user); err != nil {
		if conflict := uniqueUserErr(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[UserService] Register OK: user=%s username=%s", user.ID, user.Username)
	return s.withNewToken(user)
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, in model.LoginCredentials) (*model.UserView, error) {
	if err := required("Email", in.Email); err != nil {
		return nil, err
	}
	if err := required("Password", in.Password); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NotFound("User")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHashed) {
		return nil, model.InvalidRequest("Password", "invalid")
	}

	return s.withNewToken(user)
}

// Current renders the session's user with the token it authenticated with.
func (s *UserService) Current(session *auth.Session) *model.UserView {
	view := model.NewUserView(session.User, session.Token)
	return &view
}

// Update applies the non-nil fields of upd to the session's user.
// Uniqueness is only re-checked for values that actually change.
func (s *UserService) Update(ctx context.Context, session *auth.Session, upd model.UserUpdate) (*model.UserView, error) {
	user := *session.User

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if err := required("Username", name); err != nil {
			return nil, err
		}
		if name != user.Username {
			exists, err := s.repo.ExistsByUsername(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if exists {
				return nil, model.InvalidRequest("Username", "already in use")
			}
			user.Username = name
		}
	}

	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if err := required("Email", email); err != nil {
			return nil, err
		}
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, model.InvalidRequest("Email", "already in use")
			}
			user.Email = email
		}
	}

	if upd.Password != nil {
		if err := required("Password", *upd.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHashed = hashed
	}

	if upd.Bio != nil {
		user.Bio = upd.Bio
	}
	if upd.Image != nil {
		user.Image = upd.Image
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		if conflict := uniqueUserErr(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	*session.User = user
	log.Printf("[UserService] Update OK: user=%s", user.ID)

	view := model.NewUserView(&user, session.Token)
	return &view, nil
}

func (s *UserService) withNewToken(user *model.User) (*model.UserView, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	view := model.NewUserView(user, token)
	return &view, nil
}
