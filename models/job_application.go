package models

import (
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationApplied            ApplicationStatus = "applied"
	ApplicationUnderReview        ApplicationStatus = "under_review"
	ApplicationShortlisted        ApplicationStatus = "shortlisted"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationRejected           ApplicationStatus = "rejected"
	ApplicationAccepted           ApplicationStatus = "accepted"
	ApplicationWithdrawn          ApplicationStatus = "withdrawn"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationApplied,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationInterviewScheduled,
	ApplicationRejected,
	ApplicationAccepted,
	ApplicationWithdrawn,
}

// JobApplication links a candidate to a job post. At most one exists per (job, candidate).
type JobApplication struct {
	ID             string            `json:"id"`
	JobID          string            `json:"job_id"`
	CandidateID    string            `json:"candidate_id"`
	Status         ApplicationStatus `json:"status"`
	CoverLetter    *string           `json:"cover_letter,omitempty"`
	RecruiterNotes *string           `json:"recruiter_notes,omitempty"`
	AppliedAt      time.Time         `json:"applied_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Denormalized fields filled by listing queries.
	JobTitle       string `json:"job_title,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	JobLocation    string `json:"job_location,omitempty"`
	CandidateName  string `json:"candidate_name,omitempty"`
	CandidateEmail string `json:"candidate_email,omitempty"`
	CandidatePhone string `json:"candidate_phone,omitempty"`
	RecruiterID    string `json:"-"`
}

// IsActive is false once the application reached a terminal status.
func (a *JobApplication) IsActive() bool {
	switch a.Status {
	case ApplicationRejected, ApplicationWithdrawn, ApplicationAccepted:
		return false
	default:
		return true
	}
}

func IsValidApplicationStatus(s string) (ApplicationStatus, bool) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range applicationStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// ApplicationStatuses returns the accepted status values in display order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}
