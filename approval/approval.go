// Package approval holds the admin workflow that gates recruiters:
// approving or rejecting the account and verifying the company profile.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
)

var (
	ErrNotRecruiter       = errors.New("user is not a recruiter")
	ErrProfileIncomplete  = errors.New("recruiter must complete their company profile first")
	ErrInvalidVerifStatus = errors.New("invalid verification status")
)

type RecruiterStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ApproveRecruiter(ctx context.Context, recruiterID string, at time.Time) error
	RejectRecruiter(ctx context.Context, recruiterID, reason string, at time.Time) error
}

type CompanyStore interface {
	GetByID(ctx context.Context, id string) (*models.RecruiterCompanyProfile, error)
	UpdateVerification(ctx context.Context, id string, status models.VerificationStatus, notes *string) error
}

type Service struct {
	users     RecruiterStore
	companies CompanyStore
	notifier  notify.Notifier
	now       func() time.Time
}

func NewService(users RecruiterStore, companies CompanyStore, notifier notify.Notifier) *Service {
	return &Service{users: users, companies: companies, notifier: notifier, now: time.Now}
}

// ApproveRecruiter lets a recruiter post jobs. The company profile must have
// been submitted; a pending company profile is verified alongside.
func (s *Service) ApproveRecruiter(ctx context.Context, recruiterID string) (*models.User, error) {
	recruiter, err := s.loadRecruiter(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if !recruiter.ProfileDone {
		return nil, ErrProfileIncomplete
	}

	if err := s.users.ApproveRecruiter(ctx, recruiterID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to approve recruiter %s: %w", recruiterID, err)
	}
	updated, err := s.users.GetUserByID(ctx, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload recruiter %s: %w", recruiterID, err)
	}

	s.notifier.Notify(ctx, notify.Event{
		Type:           notify.EventRecruiterApproved,
		RecipientID:    updated.ID,
		RecipientEmail: updated.Email,
		RecipientName:  updated.FullName(),
		Subject:        "Your recruiter account has been approved",
		Message:        "Your recruiter account has been approved. You can now post jobs.",
	})
	return updated, nil
}

// RejectRecruiter blocks a recruiter and rejects the company profile with reason as notes.
func (s *Service) RejectRecruiter(ctx context.Context, recruiterID, reason string) (*models.User, error) {
	if _, err := s.loadRecruiter(ctx, recruiterID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	if err := s.users.RejectRecruiter(ctx, recruiterID, reason, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to reject recruiter %s: %w", recruiterID, err)
	}
	updated, err := s.users.GetUserByID(ctx, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload recruiter %s: %w", recruiterID, err)
	}

	msg := "Your recruiter account application has been rejected."
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifier.Notify(ctx, notify.Event{
		Type:           notify.EventRecruiterRejected,
		RecipientID:    updated.ID,
		RecipientEmail: updated.Email,
		RecipientName:  updated.FullName(),
		Subject:        "Your recruiter account was not approved",
		Message:        msg,
		Data:           map[string]string{"reason": reason},
	})
	return updated, nil
}

// VerifyCompany records an admin decision on a company profile and returns
// the profile together with the message shown to the recruiter.
func (s *Service) VerifyCompany(ctx context.Context, companyID, status string, notes *string) (*models.RecruiterCompanyProfile, string, error) {
	vs, ok := models.IsValidVerificationStatus(status)
	if !ok {
		return nil, "", ErrInvalidVerifStatus
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, "", err
	}
	if err := s.companies.UpdateVerification(ctx, companyID, vs, notes); err != nil {
		return nil, "", fmt.Errorf("failed to update verification for %s: %w", companyID, err)
	}
	profile, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to reload company profile %s: %w", companyID, err)
	}

	message := models.VerificationMessage(vs)
	ev := notify.Event{
		Type:        notify.EventCompanyVerification,
		RecipientID: profile.RecruiterID,
		Subject:     "Company profile " + string(vs),
		Message:     message,
		Data:        map[string]string{"company_id": profile.ID, "status": string(vs)},
	}
	if recruiter, err := s.users.GetUserByID(ctx, profile.RecruiterID); err == nil {
		ev.RecipientEmail = recruiter.Email
		ev.RecipientName = recruiter.FullName()
	}
	s.notifier.Notify(ctx, ev)
	return profile, message, nil
}

func (s *Service) loadRecruiter(ctx context.Context, recruiterID string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleRecruiter {
		return nil, ErrNotRecruiter
	}
	return u, nil
}
