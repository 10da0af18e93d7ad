package service

import (
	"context"
	"errors"
	"fmt"

	"caregame/internal/models"
	"caregame/internal/security"
	"caregame/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// CaregiverStore persists caregiver accounts. Lookups return nil, nil when absent.
type CaregiverStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (*models.Caregiver, error)
	GetByEmail(ctx context.Context, email string) (*models.Caregiver, error)
	GetByID(ctx context.Context, id int64) (*models.Caregiver, error)
}

// AuthService handles caregiver registration, login and token checks
type AuthService struct {
	caregivers CaregiverStore
	tokens     *security.TokenManager
}

// NewAuthService creates a new auth service
func NewAuthService(caregivers CaregiverStore, tokens *security.TokenManager) *AuthService {
	return &AuthService{
		caregivers: caregivers,
		tokens:     tokens,
	}
}

// Register creates a new caregiver account
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.Caregiver, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.caregivers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing caregiver: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	caregiver, err := s.caregivers.Create(ctx, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create caregiver: %w", err)
	}
	return caregiver, nil
}

// Login checks credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Caregiver, error) {
	caregiver, err := s.caregivers.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	if caregiver == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, caregiver.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(caregiver.ID)
	if err != nil {
		return "", nil, err
	}
	return token, caregiver, nil
}

// Authenticate resolves an access token to its caregiver
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Caregiver, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	caregiver, err := s.caregivers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	if caregiver == nil {
		return nil, ErrUnauthorized
	}
	return caregiver, nil
}
