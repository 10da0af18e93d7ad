package store

import (
	"os"
	"path/filepath"
	"testing"

	"caregame/internal/models"
)

func TestLocalCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "sessions.json")
	cache, err := NewLocalCache(path)
	if err != nil {
		t.Fatalf("NewLocalCache() error = %v", err)
	}

	records, err := cache.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() on missing file error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty cache, got %d records", len(records))
	}

	score := 4.0
	for _, ts := range []string{"2025-01-01T10:00:00Z", "2025-01-02T10:00:00Z"} {
		if err := cache.AppendOne(models.SessionRecord{ChildID: "maya", Game: "Letter Sound", Timestamp: ts, Score: &score}); err != nil {
			t.Fatalf("AppendOne() error = %v", err)
		}
	}

	records, err = cache.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Timestamp != "2025-01-02T10:00:00Z" || *records[1].Score != 4 {
		t.Errorf("unexpected record %+v", records[1])
	}
}

func TestLocalCacheMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{{{"},
		{name: "object instead of array", content: `{"kid":"maya"}`},
		{name: "null", content: "null"},
		{name: "empty file", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sessions.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cache, err := NewLocalCache(path)
			if err != nil {
				t.Fatal(err)
			}

			records, err := cache.LoadAll()
			if err != nil {
				t.Fatalf("LoadAll() error = %v, want nil", err)
			}
			if len(records) != 0 {
				t.Errorf("expected no records, got %d", len(records))
			}

			if err := cache.AppendOne(models.SessionRecord{ChildID: "maya", Game: "Color Spotter"}); err != nil {
				t.Fatalf("AppendOne() error = %v", err)
			}
			records, _ = cache.LoadAll()
			if len(records) != 1 {
				t.Errorf("expected cache to recover with 1 record, got %d", len(records))
			}
		})
	}
}

func TestRedisKeys(t *testing.T) {
	if got := sessionsKey("maya"); got != "caregame:sessions:maya" {
		t.Errorf("sessionsKey() = %q", got)
	}
	if got := revisionKey("maya"); got != "caregame:revision:maya" {
		t.Errorf("revisionKey() = %q", got)
	}
}
