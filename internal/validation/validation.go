package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"caregame/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	maxChildNameLength = 64
	maxChildAge        = 18
	maxGameNameLength  = 64
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 72 {
		// bcrypt rejects inputs longer than 72 bytes
		return ValidationError{Field: "password", Message: "password must be at most 72 characters"}
	}
	return nil
}

// ValidateName checks a caregiver display name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateChildName checks a child profile name, which doubles as the child id
func ValidateChildName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > maxChildNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxChildNameLength)}
	}
	if strings.ContainsAny(name, "/?#") {
		return ValidationError{Field: "name", Message: "name must not contain '/', '?' or '#'"}
	}
	return nil
}

// ValidateAge checks a child's age in whole years
func ValidateAge(age int) error {
	if age <= 0 {
		return ValidationError{Field: "age", Message: "age must be a positive number"}
	}
	if age > maxChildAge {
		return ValidationError{Field: "age", Message: fmt.Sprintf("age must be at most %d", maxChildAge)}
	}
	return nil
}

// ValidateSession checks a session record posted by a game client
func ValidateSession(rec models.SessionRecord) error {
	game := strings.TrimSpace(rec.Game)
	if game == "" {
		return ValidationError{Field: "game", Message: "game is required"}
	}
	if len(game) > maxGameNameLength {
		return ValidationError{Field: "game", Message: "game name is too long"}
	}

	if rec.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339Nano, rec.Timestamp); err != nil {
			return ValidationError{Field: "date", Message: "date must be an RFC 3339 timestamp"}
		}
	}

	for field, v := range map[string]*int{
		"hits":         rec.Hits,
		"misses":       rec.Misses,
		"falseAlarms":  rec.FalseAlarms,
		"totalTargets": rec.TotalTargets,
		"total":        rec.Total,
	} {
		if v != nil && *v < 0 {
			return ValidationError{Field: field, Message: "must not be negative"}
		}
	}

	for field, v := range map[string]*float64{
		"score":      rec.Score,
		"total_time": rec.TotalTime,
		"accuracy":   rec.Accuracy,
		"avg_time":   rec.AvgTime,
		"risk_score": rec.RiskScore,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return ValidationError{Field: field, Message: "must be a finite number"}
		}
	}

	for i, trial := range rec.Trials {
		if trial.ResponseTime < 0 || math.IsNaN(trial.ResponseTime) || math.IsInf(trial.ResponseTime, 0) {
			return ValidationError{Field: fmt.Sprintf("trials[%d].response_time", i), Message: "must be a non-negative number"}
		}
	}

	for i, c := range rec.Choices {
		if c.RT < 0 || math.IsNaN(c.RT) || math.IsNaN(c.Score) {
			return ValidationError{Field: fmt.Sprintf("choices[%d]", i), Message: "must hold a score and a non-negative rt"}
		}
	}

	return nil
}
