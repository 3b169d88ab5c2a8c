package models

import "time"

// SavedCandidate is a recruiter's bookmark of a candidate with private notes.
type SavedCandidate struct {
	ID          string    `json:"id"`
	RecruiterID string    `json:"recruiter_id"`
	CandidateID string    `json:"candidate_id"`
	Notes       *string   `json:"notes,omitempty"`
	SavedAt     time.Time `json:"saved_at"`

	Candidate *User `json:"candidate,omitempty"`
}

// RevokedToken records a logged-out refresh token by its SHA-256 hash.
type RevokedToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}
