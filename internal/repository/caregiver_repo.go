package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"caregame/internal/database"
	"caregame/internal/models"
)

// CaregiverRepository handles caregiver accounts
type CaregiverRepository struct {
	db *database.DB
}

// NewCaregiverRepository creates a new caregiver repository
func NewCaregiverRepository(db *database.DB) *CaregiverRepository {
	return &CaregiverRepository{db: db}
}

// Create inserts a new caregiver
func (r *CaregiverRepository) Create(ctx context.Context, email, passwordHash, name string) (*models.Caregiver, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	query := `
		INSERT INTO caregivers (email, password_hash, name)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create caregiver: %w", err)
	}

	return &models.Caregiver{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// GetByEmail retrieves a caregiver by email address
func (r *CaregiverRepository) GetByEmail(ctx context.Context, email string) (*models.Caregiver, error) {
	return r.getOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID retrieves a caregiver by ID
func (r *CaregiverRepository) GetByID(ctx context.Context, id int64) (*models.Caregiver, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *CaregiverRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Caregiver, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM caregivers
		WHERE ` + where

	c := &models.Caregiver{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	return c, nil
}
