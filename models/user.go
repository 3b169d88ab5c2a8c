package models

import (
	"strings"
	"time"
)

// Role tags a user account. Recruiters additionally carry the approval flags below.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ApprovalStatus is the admin decision on a recruiter account.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Role         Role           `json:"role"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Phone        string         `json:"phone"`
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty"`
	Gender       *Gender        `json:"gender,omitempty"`
	Address      *string        `json:"address,omitempty"`
	City         *string        `json:"city,omitempty"`
	State        *string        `json:"state,omitempty"`
	Pincode      *string        `json:"pincode,omitempty"`
	Bio          *string        `json:"bio,omitempty"`
	Skills       *string        `json:"-"` // comma-separated in storage
	Experience   *string        `json:"experience,omitempty"`
	Education    *string        `json:"education,omitempty"`
	LinkedinURL  *string        `json:"linkedin_url,omitempty"`
	GithubURL    *string        `json:"github_url,omitempty"`
	PortfolioURL *string        `json:"portfolio_url,omitempty"`
	Resume       ResumeInfo     `json:"resume"`
	IsActive     bool           `json:"is_active"`
	IsSuperuser  bool           `json:"-"`
	ProfileDone  bool           `json:"profile_completed"`
	Approval     ApprovalStatus `json:"approval_status"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ResumeInfo describes the most recently uploaded resume of a user.
type ResumeInfo struct {
	FileName   *string    `json:"file_name"`
	FilePath   *string    `json:"file_path"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SkillsList splits the stored comma-separated skills.
func (u *User) SkillsList() []string {
	if u.Skills == nil {
		return []string{}
	}
	return SplitCommaList(*u.Skills)
}

// CanPostJobs reports whether the account may create or edit job posts.
// Only recruiters approved by an admin qualify.
func (u *User) CanPostJobs() bool {
	return u.Role == RoleRecruiter && u.Approval == ApprovalApproved
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

// IsValidRole checks a role string, returning the typed role when valid.
func IsValidRole(roleStr string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(roleStr)))
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

func IsValidApprovalStatus(s string) (ApprovalStatus, bool) {
	as := ApprovalStatus(strings.ToLower(strings.TrimSpace(s)))
	switch as {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return as, true
	default:
		return "", false
	}
}

func IsValidGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	default:
		return "", false
	}
}

// SplitCommaList turns "a, b,,c" into [a b c].
func SplitCommaList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinCommaList is the inverse of SplitCommaList.
func JoinCommaList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, ", ")
}
