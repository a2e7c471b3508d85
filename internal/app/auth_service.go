// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"blog/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates that the provided email or password was incorrect.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenIssuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens domain.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a user and returns it with a freshly issued token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "":
		return nil, "", invalid("username is required")
	case email == "":
		return nil, "", invalid("email is required")
	case password == "":
		return nil, "", invalid("password is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", invalid("email is invalid")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", invalid("email already in use")
	}
	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", invalid("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, username, email, string(hash))
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, "", invalid("username or email already in use")
	}
	if err != nil {
		return nil, "", err
	}
	return s.withToken(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", invalid("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	return s.withToken(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// LoginWithSSO issues a token for an identity already verified by an OIDC
// provider, provisioning a password-less user on first sight.
func (s *AuthService) LoginWithSSO(ctx context.Context, email string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user != nil {
		return s.withToken(user)
	}

	username := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		username = email[:i]
	}
	taken, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if taken != nil {
		username = fmt.Sprintf("%s-%s", username, uuid.NewString()[:8])
	}

	user, err = s.users.Create(ctx, username, email, "")
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost a race with a concurrent first login for the same email.
		user, err = s.users.GetByEmail(ctx, email)
		if err == nil && user == nil {
			err = ErrInvalidCredentials
		}
	}
	if err != nil {
		return nil, "", err
	}
	return s.withToken(user)
}

func (s *AuthService) withToken(user *domain.User) (*domain.User, string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
