package models

import (
	"encoding/json"
	"strings"
	"time"
)

type CompanySize string

const (
	CompanySize1To10     CompanySize = "1-10"
	CompanySize11To50    CompanySize = "11-50"
	CompanySize51To200   CompanySize = "51-200"
	CompanySize201To500  CompanySize = "201-500"
	CompanySize501To1000 CompanySize = "501-1000"
	CompanySize1000Plus  CompanySize = "1000+"
)

// CompanyWorkMode is the office policy declared on a company profile.
// It is distinct from JobWorkMode, which uses capitalised values.
type CompanyWorkMode string

const (
	CompanyWorkOffice CompanyWorkMode = "office"
	CompanyWorkHybrid CompanyWorkMode = "hybrid"
	CompanyWorkRemote CompanyWorkMode = "remote"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// RecruiterCompanyProfile is the single company profile owned by a recruiter.
type RecruiterCompanyProfile struct {
	ID                 string             `json:"id"`
	RecruiterID        string             `json:"recruiter_id"`
	CompanyName        string             `json:"company_name"`
	Website            *string            `json:"website,omitempty"`
	Industry           string             `json:"industry"`
	CompanySize        CompanySize        `json:"company_size"`
	FoundedYear        *int               `json:"founded_year,omitempty"`
	HeadOfficeLocation string             `json:"head_office_location"`
	GSTCIN             *string            `json:"gst_cin,omitempty"`
	RegistrationDoc    *string            `json:"company_registration_document,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationNotes  *string            `json:"verification_notes,omitempty"`
	CompanyDescription string             `json:"company_description"`
	MissionAndCulture  *string            `json:"mission_and_culture,omitempty"`
	Benefits           []string           `json:"benefits_list"`
	OfficeAddress      string             `json:"office_address"`
	WorkMode           CompanyWorkMode    `json:"work_mode"`
	OfficePhotos       []string           `json:"office_photos_list"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (p *RecruiterCompanyProfile) IsVerified() bool {
	return p.VerificationStatus == VerificationVerified
}

func IsValidCompanySize(s string) (CompanySize, bool) {
	cs := CompanySize(strings.TrimSpace(s))
	switch cs {
	case CompanySize1To10, CompanySize11To50, CompanySize51To200, CompanySize201To500, CompanySize501To1000, CompanySize1000Plus:
		return cs, true
	default:
		return "", false
	}
}

func IsValidCompanyWorkMode(s string) (CompanyWorkMode, bool) {
	wm := CompanyWorkMode(strings.ToLower(strings.TrimSpace(s)))
	switch wm {
	case CompanyWorkOffice, CompanyWorkHybrid, CompanyWorkRemote:
		return wm, true
	default:
		return "", false
	}
}

func IsValidVerificationStatus(s string) (VerificationStatus, bool) {
	vs := VerificationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch vs {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return vs, true
	default:
		return "", false
	}
}

// VerificationMessage is the text shown to a recruiter after an admin decision.
func VerificationMessage(vs VerificationStatus) string {
	switch vs {
	case VerificationVerified:
		return "Company profile has been verified! You can now post jobs."
	case VerificationRejected:
		return "Company profile has been rejected. Please check the notes and resubmit."
	case VerificationPending:
		return "Company profile is under review."
	default:
		return ""
	}
}

// DecodeJSONList parses list columns stored as JSON text.
// Empty or malformed text yields an empty list.
func DecodeJSONList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}
	return items
}

// EncodeJSONList is the inverse of DecodeJSONList; an empty list encodes as "".
func EncodeJSONList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	b, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(b)
}

const minFoundedYear = 1800

// IsValidFoundedYear accepts years from 1800 up to the current year.
func IsValidFoundedYear(year int, now time.Time) bool {
	return year >= minFoundedYear && year <= now.Year()
}

// NormalizeGSTCIN upper-cases a GST/CIN number and reports whether it is long enough.
func NormalizeGSTCIN(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	return v, len(v) >= 10
}
