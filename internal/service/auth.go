// Package service provides authentication and todo business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/TodoAPI/internal/auth"
	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/repository"
	"github.com/google/uuid"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// Create stores a new user. It returns repository.ErrEmailTaken on duplicate email.
	Create(ctx context.Context, user *models.User) error
	// FindByID returns the user with its tokens, or repository.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByEmail returns the user with its tokens, or repository.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// AddToken appends a token to the user's live tokens.
	AddToken(ctx context.Context, userID string, token models.Token) error
	// RemoveToken removes a token; absent tokens are not an error.
	RemoveToken(ctx context.Context, userID string, token models.Token) error
	// RemoveAllTokens clears the user's live tokens.
	RemoveAllTokens(ctx context.Context, userID string) error
	// Delete removes the user and its tokens.
	Delete(ctx context.Context, userID string) error
}

// OwnedRemover deletes everything a user owns.
type OwnedRemover interface {
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenCodec signs and verifies session tokens with an explicit secret.
type TokenCodec interface {
	Issue(userID, access string, secret []byte) (string, error)
	Verify(token string, secret []byte) (*auth.Claims, error)
}

// AuthService implements user registration, login and session token management.
type AuthService struct {
	repo   AuthRepository
	owned  OwnedRemover
	hasher PasswordHasher
	codec  TokenCodec
	secret []byte
	// dummy is compared against when the email is unknown, so both login
	// failure paths pay for one hash comparison.
	dummy string
}

// NewAuthService constructs a new AuthService.
// secret is the HMAC key every issued token is signed with.
func NewAuthService(repo AuthRepository, owned OwnedRemover, hasher PasswordHasher, codec TokenCodec, secret []byte) *AuthService {
	dummy, _ := hasher.Hash(uuid.NewString())
	return &AuthService{
		repo:   repo,
		owned:  owned,
		hasher: hasher,
		codec:  codec,
		secret: secret,
		dummy:  dummy,
	}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateIdentity validates the input, hashes the password and stores a new
// user with no tokens. Malformed or duplicate email and short passwords yield
// a *ValidationError.
func (s *AuthService) CreateIdentity(ctx context.Context, email, password string) (*models.User, error) {
	in := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: digest,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, invalid("email", "is already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IssueToken signs a new token of the given class for user, records it as
// live and returns it. An empty access defaults to models.TokenAccessAuth.
// Each call yields an independent token; earlier tokens stay valid.
func (s *AuthService) IssueToken(ctx context.Context, user *models.User, access string) (string, error) {
	if access == "" {
		access = models.TokenAccessAuth
	}

	value, err := s.codec.Issue(user.ID, access, s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	tok := models.Token{Access: access, Token: value}
	if err := s.repo.AddToken(ctx, user.ID, tok); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	user.Tokens = append(user.Tokens, tok)
	return value, nil
}

// ResolveByToken returns the user a token was issued to, provided the token
// verifies and is still live. All failures collapse into ErrAuthentication;
// only store errors are returned as-is.
func (s *AuthService) ResolveByToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.codec.Verify(token, s.secret)
	if err != nil {
		return nil, ErrAuthentication
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.HasToken(claims.Access, token) {
		return nil, ErrAuthentication
	}
	return user, nil
}

// ResolveByCredentials returns the user matching email and password.
// An unknown email and a wrong password both yield ErrAuthentication.
func (s *AuthService) ResolveByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Verify(password, s.dummy)
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrAuthentication
	}
	return user, nil
}

// RevokeToken removes token from the user's live tokens. Revoking a token
// that is already gone succeeds. Sibling tokens stay valid.
func (s *AuthService) RevokeToken(ctx context.Context, user *models.User, token string) error {
	kept := user.Tokens[:0:0]
	for _, t := range user.Tokens {
		if t.Token != token {
			kept = append(kept, t)
			continue
		}
		if err := s.repo.RemoveToken(ctx, user.ID, t); err != nil {
			return fmt.Errorf("remove token: %w", err)
		}
	}
	user.Tokens = kept
	return nil
}

// RevokeAllTokens ends every session of user.
func (s *AuthService) RevokeAllTokens(ctx context.Context, user *models.User) error {
	if err := s.repo.RemoveAllTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("remove tokens: %w", err)
	}
	user.Tokens = nil
	return nil
}

// DeleteIdentity removes user, its todos and, with it, every token it held.
func (s *AuthService) DeleteIdentity(ctx context.Context, user *models.User) error {
	if err := s.owned.DeleteByOwner(ctx, user.ID); err != nil {
		return fmt.Errorf("delete todos: %w", err)
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	user.Tokens = nil
	return nil
}

// SerializePublic projects user onto the fields clients may see.
func SerializePublic(user *models.User) models.PublicUser {
	return models.PublicUser{ID: user.ID, Email: user.Email}
}
