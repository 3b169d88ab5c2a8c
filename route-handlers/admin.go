package routehandlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jobportal/jobportal/approval"
	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/webutil"
)

type RecruiterDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListRecruiters(ctx context.Context, f datastore.RecruiterFilter) ([]models.User, error)
}

type CompanyDirectory interface {
	GetByRecruiterID(ctx context.Context, recruiterID string) (*models.RecruiterCompanyProfile, error)
	List(ctx context.Context, f datastore.CompanyProfileFilter) ([]models.RecruiterCompanyProfile, error)
}

// AdminHandler serves the recruiter approval and company verification endpoints.
type AdminHandler struct {
	users     RecruiterDirectory
	companies CompanyDirectory
	approvals *approval.Service
}

func NewAdminHandler(users RecruiterDirectory, companies CompanyDirectory, approvals *approval.Service) *AdminHandler {
	return &AdminHandler{users: users, companies: companies, approvals: approvals}
}

// recruiterView is a recruiter account as listed for admins.
type recruiterView struct {
	*models.User
	FullName       string                          `json:"full_name"`
	CanPostJobs    bool                            `json:"can_post_jobs"`
	CompanyProfile *models.RecruiterCompanyProfile `json:"company_profile,omitempty"`
}

func newRecruiterView(u *models.User) recruiterView {
	return recruiterView{User: u, FullName: u.FullName(), CanPostJobs: u.CanPostJobs()}
}

func (h *AdminHandler) HandleListCompanyProfiles(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := datastore.CompanyProfileFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if f.Status != "" {
		if _, ok := models.IsValidVerificationStatus(f.Status); !ok {
			return webutil.ErrBadRequest("Invalid status filter")
		}
	}
	profiles, err := h.companies.List(r.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to list company profiles: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"profiles": profiles,
		"total":    len(profiles),
		"filters":  map[string]string{"status": f.Status, "search": f.Search},
	})
	return nil
}

type verifyCompanyRequest struct {
	VerificationStatus string  `json:"verification_status"`
	VerificationNotes  *string `json:"verification_notes"`
}

func (h *AdminHandler) HandleVerifyCompany(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, paramID, "company profile")
	if err != nil {
		return err
	}
	var req verifyCompanyRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}

	profile, message, err := h.approvals.VerifyCompany(r.Context(), id, req.VerificationStatus, optionalString(req.VerificationNotes))
	switch {
	case errors.Is(err, approval.ErrInvalidVerifStatus):
		return webutil.FieldError("verification_status", "Invalid verification status.")
	case errors.Is(err, sql.ErrNoRows):
		return webutil.ErrNotFoundWrap("Company profile not found", err)
	case err != nil:
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"message":              fmt.Sprintf("Company profile %s successfully", profile.VerificationStatus),
		"profile":              profile,
		"notification_message": message,
	})
	return nil
}

func (h *AdminHandler) HandleListRecruiters(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := datastore.RecruiterFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if f.Status != "" {
		if _, ok := models.IsValidApprovalStatus(f.Status); !ok {
			return webutil.ErrBadRequest("Invalid status filter")
		}
	}
	if raw := strings.TrimSpace(q.Get("profile_completed")); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return webutil.ErrBadRequest("profile_completed must be true or false")
		}
		f.ProfileCompleted = &done
	}

	recruiters, err := h.users.ListRecruiters(r.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to list recruiters: %w", err)
	}
	views := make([]recruiterView, 0, len(recruiters))
	for i := range recruiters {
		views = append(views, newRecruiterView(&recruiters[i]))
	}

	filters := map[string]any{"status": f.Status, "search": f.Search, "profile_completed": f.ProfileCompleted}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"recruiters": views,
		"total":      len(views),
		"filters":    filters,
	})
	return nil
}

func (h *AdminHandler) HandleGetRecruiter(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, paramID, "recruiter")
	if err != nil {
		return err
	}
	u, err := h.users.GetUserByID(r.Context(), id)
	if err != nil || u.Role != models.RoleRecruiter {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Recruiter not found")
		}
		return fmt.Errorf("failed to load recruiter %s: %w", id, err)
	}

	view := newRecruiterView(u)
	profile, err := h.companies.GetByRecruiterID(r.Context(), id)
	switch {
	case err == nil:
		view.CompanyProfile = profile
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to load company profile for %s: %w", id, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"recruiter": view,
	})
	return nil
}

// approvalError maps approval workflow errors onto responses.
func approvalError(err error) error {
	switch {
	case errors.Is(err, approval.ErrProfileIncomplete):
		return webutil.ErrBadRequest("Cannot approve recruiter. Profile not completed.").
			WithField("profile", "Recruiter must complete their company profile first.")
	case errors.Is(err, approval.ErrNotRecruiter), errors.Is(err, sql.ErrNoRows):
		return webutil.ErrNotFoundWrap("Recruiter not found", err)
	default:
		return err
	}
}

func (h *AdminHandler) HandleApproveRecruiter(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, paramID, "recruiter")
	if err != nil {
		return err
	}
	u, err := h.approvals.ApproveRecruiter(r.Context(), id)
	if err != nil {
		return approvalError(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Recruiter approved successfully. They can now post jobs.",
		"recruiter": newRecruiterView(u),
	})
	return nil
}

type rejectRecruiterRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) HandleRejectRecruiter(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, paramID, "recruiter")
	if err != nil {
		return err
	}
	var req rejectRecruiterRequest
	if err := webutil.DecodeOptionalJSON(w, r, &req); err != nil {
		return err
	}
	u, err := h.approvals.RejectRecruiter(r.Context(), id, req.Reason)
	if err != nil {
		return approvalError(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "Recruiter rejected successfully.",
		"recruiter":        newRecruiterView(u),
		"rejection_reason": strings.TrimSpace(req.Reason),
	})
	return nil
}
