package models

import (
	"strconv"
	"strings"
	"time"
)

// DefaultStatus is shown for sessions that were saved without a status
const DefaultStatus = "Completed"

// TrialEvent is one stimulus-response event inside a session
type TrialEvent struct {
	IsCorrect bool `json:"is_correct"`
	// ResponseTime is in seconds; zero means no timed response
	ResponseTime float64 `json:"response_time"`
}

// Choice is one Emotion Adventure decision
type Choice struct {
	Score float64 `json:"score"`
	RT    float64 `json:"rt"`
}

// SessionRecord is one play of one mini-game by one child. The JSON layout is
// the one game clients write into the local cache and the remote store.
type SessionRecord struct {
	ID        string `json:"id,omitempty"`
	ChildID   string `json:"kid"`
	Game      string `json:"game"`
	Timestamp string `json:"date"`
	Status    string `json:"status,omitempty"`

	Trials []TrialEvent `json:"trials,omitempty"`

	// Generic counters
	Score *float64 `json:"score,omitempty"`
	Hits  *int     `json:"hits,omitempty"`

	// Symbol Spotter
	Misses       *int `json:"misses,omitempty"`
	FalseAlarms  *int `json:"falseAlarms,omitempty"`
	TotalTargets *int `json:"totalTargets,omitempty"`

	// Letter Sound
	Total        *int     `json:"total,omitempty"`
	TotalTime    *float64 `json:"total_time,omitempty"`
	Accuracy     *float64 `json:"accuracy,omitempty"`
	AvgTime      *float64 `json:"avg_time,omitempty"`
	FlagDyslexia bool     `json:"flag_dyslexia,omitempty"`

	// Color Spotter
	UserAnswers    []string `json:"userAnswers,omitempty"`
	CorrectAnswers []string `json:"correctAnswers,omitempty"`

	// Emotion Adventure
	Choices []Choice `json:"choices,omitempty"`

	RiskScore *float64 `json:"risk_score,omitempty"`

	// Revision is assigned by the remote store; zero for local copies
	Revision int64 `json:"revision,omitempty"`

	// Set by Normalize
	Kind   GameKind `json:"-"`
	Points float64  `json:"-"`
}

// NormalizeChildID case-normalizes an opaque child identifier
func NormalizeChildID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Normalize returns a copy of the record with the ingestion fallbacks applied
// once: lower-cased child id, canonical game kind, and Points set to
// score, else hits, else 0.
func (s SessionRecord) Normalize() SessionRecord {
	s.ChildID = NormalizeChildID(s.ChildID)
	s.Kind = ParseGameKind(s.Game)
	switch {
	case s.Score != nil:
		s.Points = *s.Score
	case s.Hits != nil:
		s.Points = float64(*s.Hits)
	default:
		s.Points = 0
	}
	return s
}

// HasPoints reports whether the session stored a score or a hit count
func (s SessionRecord) HasPoints() bool {
	return s.Score != nil || s.Hits != nil
}

// GameKey is the canonical game name, or the stored name for unknown games
func (s SessionRecord) GameKey() string {
	if s.Kind != GameUnknown {
		return string(s.Kind)
	}
	return s.Game
}

// Fingerprint identifies the same session arriving from different sources
func (s SessionRecord) Fingerprint() string {
	return strings.Join([]string{
		s.Timestamp,
		s.GameKey(),
		strconv.FormatFloat(s.Points, 'f', -1, 64),
	}, "|")
}

// Time parses the session timestamp. Unparseable timestamps yield the zero time.
func (s SessionRecord) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StatusOrDefault returns the stored status, or DefaultStatus when none was saved
func (s SessionRecord) StatusOrDefault() string {
	if s.Status == "" {
		return DefaultStatus
	}
	return s.Status
}

// IntValue dereferences an optional counter
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FloatValue dereferences an optional number
func FloatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
