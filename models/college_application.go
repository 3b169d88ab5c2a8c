package models

import (
	"encoding/json"
	"strings"
	"time"
)

type CollegeApplicationStatus string

const (
	CollegePending     CollegeApplicationStatus = "pending"
	CollegeUnderReview CollegeApplicationStatus = "under_review"
	CollegeApproved    CollegeApplicationStatus = "approved"
	CollegeRejected    CollegeApplicationStatus = "rejected"
	CollegeWaitlisted  CollegeApplicationStatus = "waitlisted"
)

// CollegeApplication is an admission request by a user for one college.
// CollegeData carries the client's static college record verbatim.
type CollegeApplication struct {
	ID            string                   `json:"id"`
	UserID        string                   `json:"user_id"`
	CollegeName   string                   `json:"college_name"`
	CollegeData   json.RawMessage          `json:"college_data"`
	FullName      string                   `json:"full_name"`
	Email         string                   `json:"email"`
	Phone         string                   `json:"phone"`
	DateOfBirth   time.Time                `json:"date_of_birth"`
	Gender        Gender                   `json:"gender"`
	Address       string                   `json:"address"`
	City          string                   `json:"city"`
	State         string                   `json:"state"`
	Pincode       string                   `json:"pincode"`
	Qualification string                   `json:"qualification"`
	Percentage    float64                  `json:"percentage"`
	Course        string                   `json:"course"`
	Branch        *string                  `json:"branch,omitempty"`
	Message       *string                  `json:"message,omitempty"`
	Status        CollegeApplicationStatus `json:"status"`
	AdminNotes    *string                  `json:"admin_notes,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

func IsValidCollegeApplicationStatus(s string) (CollegeApplicationStatus, bool) {
	st := CollegeApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case CollegePending, CollegeUnderReview, CollegeApproved, CollegeRejected, CollegeWaitlisted:
		return st, true
	default:
		return "", false
	}
}

// IsValidPincode requires exactly six digits.
func IsValidPincode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DigitsOnly strips everything but 0-9.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
