package service

import (
	"context"
	"errors"
	"fmt"

	"conduit/internal/model"
	"conduit/internal/repository"
)

// ProfileService renders public profiles and applies follow changes.
type ProfileService struct {
	users  repository.UserRepository
	toggle *MembershipToggle
}

func NewProfileService(users repository.UserRepository, toggle *MembershipToggle) *ProfileService {
	return &ProfileService{users: users, toggle: toggle}
}

func (s *ProfileService) target(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NotFound("User")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// Get renders username's profile for viewer, which may be nil.
func (s *ProfileService) Get(ctx context.Context, viewer *model.User, username string) (*model.ProfileView, error) {
	user, err := s.target(ctx, username)
	if err != nil {
		return nil, err
	}
	view := model.NewProfileView(user, viewer)
	return &view, nil
}

func (s *ProfileService) Follow(ctx context.Context, actor *model.User, username string) (*model.ProfileView, error) {
	user, err := s.target(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.toggle.Follow(ctx, actor, user); err != nil {
		return nil, err
	}
	view := model.NewProfileView(user, actor)
	return &view, nil
}

func (s *ProfileService) Unfollow(ctx context.Context, actor *model.User, username string) (*model.ProfileView, error) {
	user, err := s.target(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.toggle.Unfollow(ctx, actor, user); err != nil {
		return nil, err
	}
	view := model.NewProfileView(user, actor)
	return &view, nil
}
