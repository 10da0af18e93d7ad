package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"caregame/internal/models"
)

const backupVersion = "1.0"

// BackupData is the export file layout
type BackupData struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Children   []models.ChildProfile  `json:"children"`
	Sessions   []models.SessionRecord `json:"sessions"`
}

// BackupProfileStore lists and restores child profiles
type BackupProfileStore interface {
	List(ctx context.Context) ([]models.ChildProfile, error)
	Import(ctx context.Context, child models.ChildProfile) (bool, error)
}

// BackupSessionStore lists and restores remote sessions
type BackupSessionStore interface {
	ListChildIDs(ctx context.Context) ([]string, error)
	LoadAll(ctx context.Context, childID string) ([]models.SessionRecord, error)
	Import(ctx context.Context, rec models.SessionRecord) (bool, error)
}

// BackupService handles export and restore of profiles and remote sessions
type BackupService struct {
	profiles BackupProfileStore
	sessions BackupSessionStore
	now      func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(profiles BackupProfileStore, sessions BackupSessionStore) *BackupService {
	return &BackupService{profiles: profiles, sessions: sessions, now: time.Now}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	log.Println("Starting export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}

	log.Printf("Exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: s.now().UTC(),
	}

	children, err := s.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	backup.Children = children

	ids, err := s.sessions.ListChildIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	backup.Sessions = []models.SessionRecord{}
	for _, id := range ids {
		recs, err := s.sessions.LoadAll(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to export sessions for %s: %w", id, err)
		}
		for _, rec := range recs {
			rec.ChildID = id
			rec.Revision = 0
			backup.Sessions = append(backup.Sessions, rec)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d children, %d sessions", len(backup.Children), len(backup.Sessions))
	return nil
}

// Import restores a backup file. Existing profiles and sessions are kept.
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup from a reader
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	var children, sessions, skipped int
	for _, child := range backup.Children {
		written, err := s.profiles.Import(ctx, child)
		if err != nil {
			return fmt.Errorf("failed to import child %s: %w", child.Name, err)
		}
		if written {
			children++
		} else {
			skipped++
		}
	}
	for _, rec := range backup.Sessions {
		written, err := s.sessions.Import(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to import session %s: %w", rec.ID, err)
		}
		if written {
			sessions++
		} else {
			skipped++
		}
	}

	log.Printf("Import completed: %d children, %d sessions, %d already present", children, sessions, skipped)
	return nil
}
