package routehandlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
	"github.com/jobportal/jobportal/webutil"
)

type ApplicationStore interface {
	Create(ctx context.Context, a *models.JobApplication) error
	FindForCandidate(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error)
	GetByID(ctx context.Context, id string) (*models.JobApplication, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.JobApplication, error)
	ListByRecruiter(ctx context.Context, recruiterID string, f datastore.ApplicationFilter) ([]models.JobApplication, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, notes *string) error
}

type PublishedJobReader interface {
	GetPublished(ctx context.Context, jobID string) (*models.JobPost, error)
}

type ApplicationHandler struct {
	apps     ApplicationStore
	jobs     PublishedJobReader
	users    UserReader
	notifier notify.Notifier
	now      func() time.Time
}

func NewApplicationHandler(apps ApplicationStore, jobs PublishedJobReader, users UserReader, notifier notify.Notifier) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, jobs: jobs, users: users, notifier: notifier, now: time.Now}
}

type applyRequest struct {
	CoverLetter      *string `json:"cover_letter"`
	CoverLetterCamel *string `json:"coverLetter"`
}

// HandleApply submits the caller's application to a published job.
func (h *ApplicationHandler) HandleApply(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	if p.Role != models.RoleCandidate {
		return webutil.ErrForbidden("Only candidates can apply for jobs")
	}
	jobID, err := uuidParam(r, paramID, "job")
	if err != nil {
		return err
	}
	var req applyRequest
	if err := webutil.DecodeOptionalJSON(w, r, &req); err != nil {
		return err
	}

	job, err := h.jobs.GetPublished(r.Context(), jobID)
	if err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Job not found or not available", err)
		}
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.DeadlinePassed(h.now()) {
		return webutil.ErrBadRequest("The application deadline for this job has passed")
	}

	app := &models.JobApplication{
		JobID:       job.ID,
		CandidateID: p.UserID,
		Status:      models.ApplicationApplied,
		CoverLetter: optionalString(firstNonNil(req.CoverLetter, req.CoverLetterCamel)),
	}
	if err := h.apps.Create(r.Context(), app); err != nil {
		if isDuplicate(err) {
			return webutil.ErrBadRequestWrap("You have already applied for this job", err)
		}
		return fmt.Errorf("failed to create application for job %s: %w", jobID, err)
	}
	slog.InfoContext(r.Context(), "Application submitted", "application_id", app.ID, "job_id", job.ID, "candidate_id", p.UserID)

	h.notifyRecruiter(r.Context(), job, app)

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Application submitted successfully!",
		"application": map[string]any{
			"id":           app.ID,
			"job_id":       app.JobID,
			"job_title":    job.JobTitle,
			"company_name": job.CompanyName,
			"status":       app.Status,
			"cover_letter": app.CoverLetter,
			"applied_at":   app.AppliedAt,
		},
	})
	return nil
}

func (h *ApplicationHandler) notifyRecruiter(ctx context.Context, job *models.JobPost, app *models.JobApplication) {
	ev := notify.Event{
		Type:        notify.EventApplicationReceived,
		RecipientID: job.RecruiterID,
		Subject:     "New application for " + job.JobTitle,
		Message:     fmt.Sprintf("A candidate applied for %s.", job.JobTitle),
		Data:        map[string]string{"job_id": job.ID, "application_id": app.ID},
	}
	if recruiter, err := h.users.GetUserByID(ctx, job.RecruiterID); err == nil {
		ev.RecipientEmail = recruiter.Email
		ev.RecipientName = recruiter.FullName()
	}
	h.notifier.Notify(ctx, ev)
}

// HandleCheckStatus reports whether the caller applied to a job. Only
// candidates can have applied.
func (h *ApplicationHandler) HandleCheckStatus(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	jobID, err := uuidParam(r, paramID, "job")
	if err != nil {
		return err
	}
	resp := map[string]any{"success": true, "has_applied": false}
	if p.Role == models.RoleCandidate {
		app, err := h.apps.FindForCandidate(r.Context(), jobID, p.UserID)
		if err != nil {
			return err
		}
		if app != nil {
			resp["has_applied"] = true
			resp["application"] = map[string]any{
				"id":         app.ID,
				"status":     app.Status,
				"applied_at": app.AppliedAt,
			}
		}
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
	return nil
}

func (h *ApplicationHandler) HandleListMyApplications(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	apps, err := h.apps.ListByCandidate(r.Context(), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to list applications for %s: %w", p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(apps),
		"applications": apps,
	})
	return nil
}

// HandleListRecruiterApplications lists applications to the caller's jobs,
// optionally filtered by status and job.
func (h *ApplicationHandler) HandleListRecruiterApplications(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	q := r.URL.Query()
	var f datastore.ApplicationFilter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, ok := models.IsValidApplicationStatus(raw)
		if !ok {
			return webutil.ErrBadRequest("Invalid status")
		}
		f.Status = string(st)
	}
	if raw := strings.TrimSpace(q.Get("job_id")); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return webutil.ErrBadRequest("Invalid job ID format")
		}
		f.JobID = raw
	}

	apps, err := h.apps.ListByRecruiter(r.Context(), p.UserID, f)
	if err != nil {
		return fmt.Errorf("failed to list applications for recruiter %s: %w", p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(apps),
		"applications": apps,
	})
	return nil
}

type updateApplicationStatusRequest struct {
	Status         string  `json:"status"`
	RecruiterNotes *string `json:"recruiter_notes"`
	Notes          *string `json:"notes"`
}

func (h *ApplicationHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := uuidParam(r, paramID, "application")
	if err != nil {
		return err
	}
	var req updateApplicationStatusRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}

	app, err := h.apps.GetByID(r.Context(), id)
	if err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Application not found", err)
		}
		return fmt.Errorf("failed to load application %s: %w", id, err)
	}
	if app.RecruiterID != p.UserID {
		return webutil.ErrForbidden("Access denied")
	}
	status, ok := models.IsValidApplicationStatus(req.Status)
	if !ok {
		return webutil.FieldError("status", "Invalid status")
	}

	notes := app.RecruiterNotes
	if n := firstNonNil(req.RecruiterNotes, req.Notes); n != nil {
		notes = optionalString(n)
	}
	if err := h.apps.UpdateStatus(r.Context(), id, status, notes); err != nil {
		return fmt.Errorf("failed to update application %s: %w", id, err)
	}
	previous := app.Status
	app.Status, app.RecruiterNotes = status, notes
	app.UpdatedAt = h.now().UTC()

	if previous != status {
		h.notifier.Notify(r.Context(), notify.Event{
			Type:           notify.EventApplicationStatus,
			RecipientID:    app.CandidateID,
			RecipientEmail: app.CandidateEmail,
			RecipientName:  app.CandidateName,
			Subject:        "Update on your application for " + app.JobTitle,
			Message:        fmt.Sprintf("Your application for %s at %s is now %s.", app.JobTitle, app.CompanyName, strings.ReplaceAll(string(status), "_", " ")),
			Data:           map[string]string{"application_id": app.ID, "status": string(status)},
		})
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Application status updated successfully",
		"application": app,
	})
	return nil
}
