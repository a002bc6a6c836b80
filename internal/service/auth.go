package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/msomdec/taskflow/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService handles user registration, login, and profile lookup.
type AuthService struct {
	users      domain.UserRepository
	tokens     *TokenService
	bcryptCost int
	// dummyHash is compared against on unknown emails so both login
	// failures cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), bcryptCost)
	if err != nil {
		// Only an out-of-range cost fails; fall back to the library default.
		bcryptCost = bcrypt.DefaultCost
		dummy, _ = bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), bcryptCost)
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  *domain.User
}

// Register creates a new user account and signs them in.
func (s *AuthService) Register(ctx context.Context, displayName, email, password string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	email = normalizeEmail(email)

	if email == "" || displayName == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email address is not valid", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown email and wrong password both fail
// with domain.ErrInvalidCredential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredential
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredential
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
