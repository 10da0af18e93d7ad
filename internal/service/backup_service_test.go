package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"caregame/internal/models"
)

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()

	srcProfiles := &fakeProfileStore{profiles: map[string]models.ChildProfile{
		"maya": {Name: "maya", Age: 5, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	srcSessions := newFakeRemoteStore()
	if _, err := srcSessions.AppendOne(ctx, "maya", models.SessionRecord{ID: "s1", ChildID: "maya", Game: "Color Spotter", Timestamp: "2026-10-01T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if _, err := srcSessions.AppendOne(ctx, "maya", models.SessionRecord{ID: "s2", ChildID: "maya", Game: "Letter Sound", Timestamp: "2026-10-02T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewBackupService(srcProfiles, srcSessions).ExportToWriter(ctx, &buf); err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}

	var exported BackupData
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatal(err)
	}
	if exported.Version != backupVersion || len(exported.Children) != 1 || len(exported.Sessions) != 2 {
		t.Fatalf("unexpected export %+v", exported)
	}
	for _, rec := range exported.Sessions {
		if rec.Revision != 0 {
			t.Error("exported sessions should not carry store revisions")
		}
	}

	dstProfiles := &fakeProfileStore{profiles: map[string]models.ChildProfile{}}
	dstSessions := newFakeRemoteStore()
	dst := NewBackupService(dstProfiles, dstSessions)

	if err := dst.ImportFromReader(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}
	// a second import is a no-op
	if err := dst.ImportFromReader(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("second ImportFromReader() error = %v", err)
	}

	if len(dstSessions.records["maya"]) != 2 {
		t.Errorf("expected 2 restored sessions, got %d", len(dstSessions.records["maya"]))
	}
	if p, ok := dstProfiles.profiles["maya"]; !ok || p.Age != 5 {
		t.Errorf("profile not restored: %+v", dstProfiles.profiles)
	}
}

func TestBackupRejectsUnknownVersion(t *testing.T) {
	svc := NewBackupService(&fakeProfileStore{profiles: map[string]models.ChildProfile{}}, newFakeRemoteStore())

	err := svc.ImportFromReader(context.Background(), strings.NewReader(`{"version":"9.9"}`))
	if err == nil {
		t.Error("expected an unsupported version error")
	}
}
