package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"caregame/internal/database"
	"caregame/internal/models"

	"github.com/google/uuid"
)

// SessionRepository is the SQL-backed remote session store shared by all devices
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// LoadAll returns every stored session for a child in insertion order.
// Revision is the row id. Rows whose payload fails to decode are skipped.
func (r *SessionRepository) LoadAll(ctx context.Context, childID string) ([]models.SessionRecord, error) {
	query := `
		SELECT id, payload
		FROM sessions
		WHERE child_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, models.NormalizeChildID(childID))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionRecord{}
	for rows.Next() {
		var id int64
		var payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var rec models.SessionRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			log.Printf("Skipping malformed session %d for %s: %v", id, childID, err)
			continue
		}
		rec.Revision = id
		sessions = append(sessions, rec)
	}

	return sessions, rows.Err()
}

// AppendOne stores a session for a child and returns it with its revision set
func (r *SessionRepository) AppendOne(ctx context.Context, childID string, rec models.SessionRecord) (models.SessionRecord, error) {
	rec.ChildID = models.NormalizeChildID(childID)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Revision = 0

	payload, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO sessions (record_id, child_id, game, recorded_at, payload)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, rec.ID, rec.ChildID, rec.Game, rec.Timestamp, string(payload))
	if err != nil {
		return rec, fmt.Errorf("failed to append session: %w", err)
	}

	rec.Revision = id
	return rec, nil
}

// Import stores a session unless one with the same record id already exists.
// It reports whether a row was written.
func (r *SessionRepository) Import(ctx context.Context, rec models.SessionRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.ChildID = models.NormalizeChildID(rec.ChildID)
	rec.Revision = 0

	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to encode session: %w", err)
	}

	query := r.db.Dialect.InsertIgnore("sessions", "record_id, child_id, game, recorded_at, payload", "?, ?, ?, ?, ?")
	result, err := r.db.ExecContext(ctx, query, rec.ID, rec.ChildID, rec.Game, rec.Timestamp, string(payload))
	if err != nil {
		return false, fmt.Errorf("failed to import session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListChildIDs returns every child id with at least one stored session
func (r *SessionRepository) ListChildIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT child_id FROM sessions ORDER BY child_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
