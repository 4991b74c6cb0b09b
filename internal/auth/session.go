package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"conduit/internal/model"
)

// TokenPrefix is the literal scheme prefix of the Authorization header.
const TokenPrefix = "Token "

// Session pairs an authenticated user with the token that authenticated it.
// It lives for a single request.
type Session struct {
	User  *model.User
	Token string
}

// UserLookup is the slice of the user store the resolver needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionResolver turns an Authorization header into an optional Session.
type SessionResolver struct {
	tokens *TokenIssuer
	users  UserLookup
}

func NewSessionResolver(tokens *TokenIssuer, users UserLookup) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users}
}

// Resolve yields (nil, nil) when there is no header or when the token's user
// no longer exists. A header without the Token prefix is an InvalidRequest;
// a token that fails validation is Unauthenticated.
func (r *SessionResolver) Resolve(ctx context.Context, header string) (*Session, error) {
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, TokenPrefix) {
		return nil, model.InvalidRequest("Authorization Header", "has no `Token` prefix")
	}
	token := strings.TrimPrefix(header, TokenPrefix)

	userID, err := r.tokens.Validate(token)
	if err != nil {
		return nil, model.Unauthenticated("invalid token", err)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return &Session{User: user, Token: token}, nil
}
