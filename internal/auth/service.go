// Package auth provides the magic-link identity collaborator: it issues
// tokens and hands the core an already-authenticated user. The core itself
// never inspects tokens.
package auth

import (
	"context"
	"strings"

	"examrecord/internal/apperr"
	"examrecord/internal/logger"
	"examrecord/internal/store/gormstore"
	"examrecord/internal/store/model"
)

const visitorRole = "Visitor"

// Service implements the login flows from the original product: email
// magic links (logged, not mailed) and a shared guest account.
type Service struct {
	store      *gormstore.Store
	tokens     *TokenIssuer
	guestEmail string
}

func NewService(store *gormstore.Store, tokens *TokenIssuer, guestEmail string) *Service {
	return &Service{store: store, tokens: tokens, guestEmail: guestEmail}
}

// Tokens exposes the issuer so the transport can size cookies.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// RequestMagicLink get-or-creates the user for email and returns a signed
// token for the verification link. The link itself is logged; outbound
// email is out of scope.
func (s *Service) RequestMagicLink(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", apperr.BadInput("a valid email address is required")
	}
	user, err := s.getOrCreateUser(ctx, email)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return "", err
	}
	logger.Infof("magic link for %s: /api/auth/verify?token=%s", user.Email, token)
	return token, nil
}

// GuestLogin issues a token for the shared guest account, creating it on
// first use.
func (s *Service) GuestLogin(ctx context.Context) (string, *model.User, error) {
	user, err := s.getOrCreateUser(ctx, s.guestEmail)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UserByToken verifies the token and loads its user. Both an invalid token
// and a vanished user come back as (nil, nil): the caller treats either as
// "not signed in", never as a hard failure.
func (s *Service) UserByToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}
	return s.store.UserByEmail(ctx, claims.Subject)
}

func (s *Service) getOrCreateUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	user = &model.User{Email: email, Role: visitorRole}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if gormstore.IsDuplicate(err) {
			return s.store.UserByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}
