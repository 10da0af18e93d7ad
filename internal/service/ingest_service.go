package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"caregame/internal/models"
	"caregame/internal/validation"

	"github.com/google/uuid"
)

// ErrNotStored is returned when neither the local cache nor the remote store accepted a session
var ErrNotStored = errors.New("session not stored")

// Notifier is told when a child's sessions change
type Notifier interface {
	Publish(childID string)
}

// IngestService records sessions posted by the game clients
type IngestService struct {
	local    LocalSessionCache
	remote   RemoteSessionStore
	notifier Notifier
	now      func() time.Time
}

// NewIngestService creates an ingest service. Any collaborator may be nil.
func NewIngestService(local LocalSessionCache, remote RemoteSessionStore, notifier Notifier) *IngestService {
	return &IngestService{
		local:    local,
		remote:   remote,
		notifier: notifier,
		now:      time.Now,
	}
}

// Record validates and normalizes a session, then appends it to the local
// cache and the remote store. A failing store is logged; the call fails
// only when no store accepted the session.
func (s *IngestService) Record(ctx context.Context, childID string, rec models.SessionRecord) (models.SessionRecord, error) {
	childID = models.NormalizeChildID(childID)
	if err := validation.ValidateChildName(childID); err != nil {
		return rec, err
	}
	if err := validation.ValidateSession(rec); err != nil {
		return rec, err
	}

	rec.ChildID = childID
	rec.Game = strings.TrimSpace(rec.Game)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp == "" {
		rec.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	rec.Revision = 0
	rec = rec.Normalize()

	stored := false
	if s.local != nil {
		if err := s.local.AppendOne(rec); err != nil {
			log.Printf("Failed to append session %s to local cache: %v", rec.ID, err)
		} else {
			stored = true
		}
	}
	if s.remote != nil {
		saved, err := s.remote.AppendOne(ctx, childID, rec)
		if err != nil {
			log.Printf("Failed to append session %s to remote store: %v", rec.ID, err)
		} else {
			stored = true
			rec.Revision = saved.Revision
		}
	}

	if !stored {
		return rec, fmt.Errorf("%w: %s", ErrNotStored, rec.ID)
	}

	if s.notifier != nil {
		s.notifier.Publish(childID)
	}
	return rec, nil
}
