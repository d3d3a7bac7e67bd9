package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrmenu/internal/auth"
	"qrmenu/internal/domain"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService registers owners and exchanges credentials for tokens.
type AuthService struct {
	owners OwnerRepository
	tokens *auth.TokenManager
}

var _ AuthServiceInterface = (*AuthService)(nil)

func NewAuthService(owners OwnerRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{owners: owners, tokens: tokens}
}

func (s *AuthService) Register(email, password string) (*domain.Owner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, "", fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	_, err := s.owners.GetOwnerByEmail(email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	owner := &domain.Owner{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.owners.CreateOwner(owner); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(owner.ID)
	if err != nil {
		return nil, "", err
	}
	return owner, token, nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	owner, err := s.owners.GetOwnerByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(owner.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Generate(owner.ID)
}
