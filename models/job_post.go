package models

import (
	"strings"
	"time"
)

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeFreelance  JobType = "Freelance"
	JobTypeInternship JobType = "Internship"
)

type JobWorkMode string

const (
	JobWorkRemote JobWorkMode = "Remote"
	JobWorkOnSite JobWorkMode = "On-site"
	JobWorkHybrid JobWorkMode = "Hybrid"
)

type ApplyMethod string

const (
	ApplyPlatform ApplyMethod = "platform"
	ApplyExternal ApplyMethod = "external"
	ApplyEmail    ApplyMethod = "email"
)

const (
	DefaultCurrency     = "INR"
	DefaultSalaryPeriod = "annually"
)

type JobPost struct {
	ID                  string      `json:"id"`
	RecruiterID         string      `json:"recruiter_id"`
	JobTitle            string      `json:"job_title"`
	Department          *string     `json:"department,omitempty"`
	JobType             JobType     `json:"job_type"`
	WorkMode            JobWorkMode `json:"work_mode"`
	ExperienceLevel     string      `json:"experience_level"`
	Location            string      `json:"location"`
	MinSalary           *int        `json:"min_salary,omitempty"`
	MaxSalary           *int        `json:"max_salary,omitempty"`
	Currency            string      `json:"currency"`
	SalaryPeriod        string      `json:"salary_period"`
	JobDescription      string      `json:"job_description"`
	KeyResponsibilities []string    `json:"key_responsibilities"`
	BenefitsAndPerks    []string    `json:"benefits_and_perks"`
	Requirements        []string    `json:"requirements"`
	RequiredSkills      []string    `json:"required_skills"`
	ApplicationDeadline *time.Time  `json:"application_deadline,omitempty"`
	ApplyMethod         ApplyMethod `json:"apply_method"`
	IsFeatured          bool        `json:"is_featured"`
	IsPublished         bool        `json:"is_published"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Populated by listing queries.
	CompanyName      string `json:"company_name,omitempty"`
	ApplicationCount int    `json:"applications_count"`
}

// DeadlinePassed reports whether the application deadline is strictly before the day of now.
func (j *JobPost) DeadlinePassed(now time.Time) bool {
	if j.ApplicationDeadline == nil {
		return false
	}
	d := j.ApplicationDeadline.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Before(today)
}

// SalaryRangeValid is false only when both bounds are set and min exceeds max.
func (j *JobPost) SalaryRangeValid() bool {
	if j.MinSalary == nil || j.MaxSalary == nil {
		return true
	}
	return *j.MinSalary <= *j.MaxSalary
}

// CompanyFallbackName is used for listings when the recruiter has no company profile.
func CompanyFallbackName(recruiterName string) string {
	return recruiterName + "'s Company"
}

// IsValidJobType matches case-insensitively and returns the canonical value.
func IsValidJobType(s string) (JobType, bool) {
	for _, jt := range []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance, JobTypeInternship} {
		if strings.EqualFold(strings.TrimSpace(s), string(jt)) {
			return jt, true
		}
	}
	return "", false
}

func IsValidJobWorkMode(s string) (JobWorkMode, bool) {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "onsite") || strings.EqualFold(v, "on site") {
		return JobWorkOnSite, true
	}
	for _, wm := range []JobWorkMode{JobWorkRemote, JobWorkOnSite, JobWorkHybrid} {
		if strings.EqualFold(v, string(wm)) {
			return wm, true
		}
	}
	return "", false
}

// IsValidApplyMethod accepts "internal" as an alias for platform.
func IsValidApplyMethod(s string) (ApplyMethod, bool) {
	am := ApplyMethod(strings.ToLower(strings.TrimSpace(s)))
	switch am {
	case "internal", "":
		return ApplyPlatform, true
	case ApplyPlatform, ApplyExternal, ApplyEmail:
		return am, true
	default:
		return "", false
	}
}
