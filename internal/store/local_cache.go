package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"caregame/internal/models"
)

// LocalCache is the device-local session cache: one JSON array of records in
// a file, shared by every child using the device.
type LocalCache struct {
	filePath string
	mu       sync.RWMutex
}

// NewLocalCache creates a cache backed by filePath. The file is created on first append.
func NewLocalCache(filePath string) (*LocalCache, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &LocalCache{filePath: filePath}, nil
}

// LoadAll returns every cached record. Content that is not a JSON array of
// records is logged and treated as an empty cache.
func (c *LocalCache) LoadAll() ([]models.SessionRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readLocked()
}

// AppendOne adds a record to the end of the cache. A malformed cache file is
// replaced by a fresh array holding only the new record.
func (c *LocalCache) AppendOne(record models.SessionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.readLocked()
	if err != nil {
		return err
	}
	records = append(records, record)
	return c.persistLocked(records)
}

func (c *LocalCache) readLocked() ([]models.SessionRecord, error) {
	data, err := os.ReadFile(c.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return []models.SessionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}
	return decodeRecords(data, c.filePath), nil
}

// decodeRecords parses a cache payload, dropping it entirely when it is not an array
func decodeRecords(data []byte, source string) []models.SessionRecord {
	if len(data) == 0 {
		return []models.SessionRecord{}
	}
	var records []models.SessionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("Ignoring malformed session cache %s: %v", source, err)
		return []models.SessionRecord{}
	}
	if records == nil {
		// literal null
		return []models.SessionRecord{}
	}
	return records
}

func (c *LocalCache) persistLocked(records []models.SessionRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session cache: %w", err)
	}
	tmp := c.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	return os.Rename(tmp, c.filePath)
}
