package models

import "time"

// ChildProfile is a child taking the screening games. Name is the primary key
// and is stored lower-cased.
type ChildProfile struct {
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
}

// Caregiver is an adult account allowed to view reports
type Caregiver struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
