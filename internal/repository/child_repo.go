package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caregame/internal/database"
	"caregame/internal/models"
)

// ChildRepository handles child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create stores a profile. An existing profile with the same name is kept
// unchanged and returned.
func (r *ChildRepository) Create(ctx context.Context, name string, age int) (*models.ChildProfile, error) {
	name = models.NormalizeChildID(name)

	query := r.db.Dialect.InsertIgnore("children", "name, age", "?, ?")
	if _, err := r.db.ExecContext(ctx, query, name, age); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	child, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("child %q missing after insert", name)
	}
	return child, nil
}

// Get retrieves a profile by name, returning nil when it does not exist
func (r *ChildRepository) Get(ctx context.Context, name string) (*models.ChildProfile, error) {
	query := `
		SELECT name, age, created_at
		FROM children
		WHERE name = ?
	`
	child := &models.ChildProfile{}
	err := r.db.QueryRowContext(ctx, query, models.NormalizeChildID(name)).Scan(&child.Name, &child.Age, &child.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// List returns every profile ordered by name
func (r *ChildRepository) List(ctx context.Context) ([]models.ChildProfile, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, age, created_at FROM children ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	children := []models.ChildProfile{}
	for rows.Next() {
		var child models.ChildProfile
		if err := rows.Scan(&child.Name, &child.Age, &child.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

// Import stores a profile with its original creation time unless the name is
// already taken. It reports whether a row was written.
func (r *ChildRepository) Import(ctx context.Context, child models.ChildProfile) (bool, error) {
	createdAt := child.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := r.db.Dialect.InsertIgnore("children", "name, age, created_at", "?, ?, ?")
	result, err := r.db.ExecContext(ctx, query, models.NormalizeChildID(child.Name), child.Age, createdAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to import child: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
