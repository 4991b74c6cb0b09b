package model

import (
	"errors"
	"time"
)

// User is an account. FollowingIDs is loaded from the follows table and is
// not a column of users.
type User struct {
	ID             string    `db:"id" json:"-"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	Bio            *string   `db:"bio" json:"bio"`
	Image          *string   `db:"image" json:"image"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`

	FollowingIDs IDSet `db:"-" json:"-"`
}

// IsFollowing reports whether u follows the user with id target.
func (u *User) IsFollowing(target string) bool {
	return u.FollowingIDs.Contains(target)
}

// Follow adds target to the following set and reports whether it changed.
func (u *User) Follow(target string) bool {
	if u.FollowingIDs == nil {
		u.FollowingIDs = NewIDSet()
	}
	return u.FollowingIDs.Add(target)
}

// Unfollow removes target from the following set and reports whether it changed.
func (u *User) Unfollow(target string) bool {
	return u.FollowingIDs.Remove(target)
}

// NewUser is the registration payload.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginCredentials is the login payload.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate carries optional profile changes; nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type RegisterRequest struct {
	User NewUser `json:"user"`
}

type LoginRequest struct {
	User LoginCredentials `json:"user"`
}

type UpdateUserRequest struct {
	User UserUpdate `json:"user"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to store a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to store a taken email
	ErrEmailExists = errors.New("email already exists")
)
