package routehandlers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/webutil"
)

type JobStore interface {
	Create(ctx context.Context, j *models.JobPost) error
	Update(ctx context.Context, j *models.JobPost) error
	GetForRecruiter(ctx context.Context, jobID, recruiterID string) (*models.JobPost, error)
	GetPublished(ctx context.Context, jobID string) (*models.JobPost, error)
	ListByRecruiter(ctx context.Context, recruiterID string) ([]models.JobPost, error)
	ListPublished(ctx context.Context, f datastore.JobFilter) ([]models.JobPost, error)
}

type ApplicationFinder interface {
	FindForCandidate(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error)
}

type JobHandler struct {
	jobs     JobStore
	users    UserReader
	applied  ApplicationFinder
	richText *bluemonday.Policy
	plain    *bluemonday.Policy
	now      func() time.Time
}

func NewJobHandler(jobs JobStore, users UserReader, applied ApplicationFinder) *JobHandler {
	return &JobHandler{
		jobs:     jobs,
		users:    users,
		applied:  applied,
		richText: bluemonday.UGCPolicy(),
		plain:    bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

type salaryRequest struct {
	Min      flexInt `json:"min"`
	Max      flexInt `json:"max"`
	Currency *string `json:"currency"`
	Period   *string `json:"period"`
}

// jobRequest accepts both the form field names of the web client and the
// column names. When several spellings are sent the first non-nil wins.
type jobRequest struct {
	Title      *string `json:"title"`
	JobTitle   *string `json:"jobTitle"`
	JobTitleSn *string `json:"job_title"`

	Department *string `json:"department"`

	JobType   *string `json:"jobType"`
	JobTypeSn *string `json:"job_type"`

	WorkMode   *string `json:"workMode"`
	WorkModeSn *string `json:"work_mode"`

	Experience        *string `json:"experience"`
	ExperienceLevel   *string `json:"experienceLevel"`
	ExperienceLevelSn *string `json:"experience_level"`

	Location *string `json:"location"`

	Salary      *salaryRequest `json:"salary"`
	MinSalary   flexInt        `json:"minSalary"`
	MinSalarySn flexInt        `json:"min_salary"`
	MaxSalary   flexInt        `json:"maxSalary"`
	MaxSalarySn flexInt        `json:"max_salary"`
	Currency    *string        `json:"currency"`
	Period      *string        `json:"salaryPeriod"`
	PeriodSn    *string        `json:"salary_period"`

	Description     *string `json:"description"`
	JobDescription  *string `json:"jobDescription"`
	JobDescriptionS *string `json:"job_description"`

	Responsibilities *stringList `json:"responsibilities"`
	KeyResp          *stringList `json:"keyResponsibilities"`
	KeyRespSn        *stringList `json:"key_responsibilities"`

	Benefits       *stringList `json:"benefits"`
	BenefitsAndPks *stringList `json:"benefitsAndPerks"`
	BenefitsSn     *stringList `json:"benefits_and_perks"`

	Requirements *stringList `json:"requirements"`

	Skills         *stringList `json:"skills"`
	RequiredSkills *stringList `json:"requiredSkills"`
	SkillsSn       *stringList `json:"required_skills"`

	Deadline   *string `json:"applicationDeadline"`
	DeadlineSn *string `json:"application_deadline"`

	ApplicationMethod *string `json:"applicationMethod"`
	ApplyMethodSn     *string `json:"apply_method"`

	FeaturedJob flexBool `json:"featuredJob"`
	IsFeatured  flexBool `json:"is_featured"`
	JobStatus   flexBool `json:"jobStatus"`
	IsPublished flexBool `json:"is_published"`
}

func pickFlexInt(vals ...flexInt) flexInt {
	for _, v := range vals {
		if v.Set {
			return v
		}
	}
	return flexInt{}
}

func pickFlexBool(vals ...flexBool) flexBool {
	for _, v := range vals {
		if v.Set {
			return v
		}
	}
	return flexBool{}
}

// apply writes the request onto j. With partial false the core fields are required.
func (h *JobHandler) apply(req jobRequest, j *models.JobPost, partial bool) map[string]string {
	fields := map[string]string{}
	text := func(name string, dst *string, vals ...*string) {
		in := firstNonNil(vals...)
		if in == nil {
			if !partial {
				fields[name] = "This field is required."
			}
			return
		}
		v := strings.TrimSpace(html.UnescapeString(h.plain.Sanitize(*in)))
		if v == "" {
			fields[name] = "This field may not be blank."
			return
		}
		*dst = v
	}

	text("job_title", &j.JobTitle, req.Title, req.JobTitle, req.JobTitleSn)
	text("experience_level", &j.ExperienceLevel, req.Experience, req.ExperienceLevel, req.ExperienceLevelSn)
	text("location", &j.Location, req.Location)
	if req.Department != nil {
		j.Department = optionalString(req.Department)
	}

	var jobType, workMode string
	text("job_type", &jobType, req.JobType, req.JobTypeSn)
	if jobType != "" {
		if jt, ok := models.IsValidJobType(jobType); ok {
			j.JobType = jt
		} else {
			fields["job_type"] = fmt.Sprintf("%q is not a valid choice.", jobType)
		}
	}
	text("work_mode", &workMode, req.WorkMode, req.WorkModeSn)
	if workMode != "" {
		if wm, ok := models.IsValidJobWorkMode(workMode); ok {
			j.WorkMode = wm
		} else {
			fields["work_mode"] = fmt.Sprintf("%q is not a valid choice.", workMode)
		}
	}

	if desc := firstNonNil(req.Description, req.JobDescription, req.JobDescriptionS); desc != nil {
		clean := strings.TrimSpace(h.richText.Sanitize(*desc))
		if clean == "" {
			fields["job_description"] = "This field may not be blank."
		} else {
			j.JobDescription = clean
		}
	} else if !partial {
		fields["job_description"] = "This field is required."
	}

	h.applySalary(req, j, fields)

	if v := firstNonNil(req.Responsibilities, req.KeyResp, req.KeyRespSn); v != nil {
		j.KeyResponsibilities = *v
	}
	if v := firstNonNil(req.Benefits, req.BenefitsAndPks, req.BenefitsSn); v != nil {
		j.BenefitsAndPerks = *v
	}
	if req.Requirements != nil {
		j.Requirements = *req.Requirements
	}
	if v := firstNonNil(req.Skills, req.RequiredSkills, req.SkillsSn); v != nil {
		j.RequiredSkills = *v
	}

	if raw := firstNonNil(req.Deadline, req.DeadlineSn); raw != nil {
		if strings.TrimSpace(*raw) == "" {
			j.ApplicationDeadline = nil
		} else if d, err := parseDate(*raw); err != nil {
			fields["application_deadline"] = "Date has wrong format. Use YYYY-MM-DD."
		} else if d.Before(today(h.now())) {
			fields["application_deadline"] = "Application deadline cannot be in the past."
		} else {
			j.ApplicationDeadline = &d
		}
	}

	if m := firstNonNil(req.ApplicationMethod, req.ApplyMethodSn); m != nil {
		if am, ok := models.IsValidApplyMethod(*m); ok {
			j.ApplyMethod = am
		} else {
			fields["apply_method"] = fmt.Sprintf("%q is not a valid choice.", *m)
		}
	} else if j.ApplyMethod == "" {
		j.ApplyMethod = models.ApplyPlatform
	}

	if f := pickFlexBool(req.FeaturedJob, req.IsFeatured); f.Set {
		j.IsFeatured = f.Value
	}
	if p := pickFlexBool(req.JobStatus, req.IsPublished); p.Set {
		j.IsPublished = p.Value
		if p.Value && j.DeadlinePassed(h.now()) {
			fields["is_published"] = "Cannot publish a job whose application deadline has passed."
		}
	} else if !partial {
		j.IsPublished = true
	}
	return fields
}

func (h *JobHandler) applySalary(req jobRequest, j *models.JobPost, fields map[string]string) {
	var s salaryRequest
	if req.Salary != nil {
		s = *req.Salary
	}
	if v := pickFlexInt(s.Min, req.MinSalary, req.MinSalarySn); v.Set {
		j.MinSalary = v.Value
	}
	if v := pickFlexInt(s.Max, req.MaxSalary, req.MaxSalarySn); v.Set {
		j.MaxSalary = v.Value
	}
	if c := optionalString(firstNonNil(s.Currency, req.Currency)); c != nil {
		j.Currency = strings.ToUpper(*c)
	} else if j.Currency == "" {
		j.Currency = models.DefaultCurrency
	}
	if p := optionalString(firstNonNil(s.Period, req.Period, req.PeriodSn)); p != nil {
		j.SalaryPeriod = strings.ToLower(*p)
	} else if j.SalaryPeriod == "" {
		j.SalaryPeriod = models.DefaultSalaryPeriod
	}

	for name, v := range map[string]*int{"min_salary": j.MinSalary, "max_salary": j.MaxSalary} {
		if v != nil && *v < 0 {
			fields[name] = "Salary cannot be negative."
		}
	}
	if !j.SalaryRangeValid() {
		fields["max_salary"] = "Maximum salary must be greater than minimum salary."
	}
}

func jobValidationError(fields map[string]string) error {
	httpErr := webutil.ErrValidation(fields)
	httpErr.Message = "Job validation failed"
	return httpErr
}

// requirePoster refuses job writes from recruiters who are not approved.
func (h *JobHandler) requirePoster(ctx context.Context, userID string) error {
	recruiter, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load recruiter %s: %w", userID, err)
	}
	if !recruiter.CanPostJobs() {
		return webutil.ErrForbidden("Please complete your company profile before posting jobs.")
	}
	return nil
}

// HandleCreateJob posts a job for an approved recruiter with a completed profile.
func (h *JobHandler) HandleCreateJob(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	if err := h.requirePoster(r.Context(), p.UserID); err != nil {
		return err
	}

	var req jobRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	job := &models.JobPost{RecruiterID: p.UserID}
	if fields := h.apply(req, job, false); len(fields) > 0 {
		return jobValidationError(fields)
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		return fmt.Errorf("failed to create job for %s: %w", p.UserID, err)
	}

	msg := "Job saved as draft successfully!"
	if job.IsPublished {
		msg = "Job published successfully!"
	}
	slog.InfoContext(r.Context(), "Job created", "job_id", job.ID, "recruiter_id", p.UserID, "published", job.IsPublished)
	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": msg,
		"job":     job,
	})
	return nil
}

func (h *JobHandler) HandleListMyJobs(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	jobs, err := h.jobs.ListByRecruiter(r.Context(), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to list jobs for %s: %w", p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(jobs),
		"jobs":    jobs,
	})
	return nil
}

// ownJob loads a job for its owner; any other caller sees 404.
func (h *JobHandler) ownJob(r *http.Request) (webutil.Principal, *models.JobPost, error) {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return p, nil, err
	}
	id, err := uuidParam(r, paramID, "job")
	if err != nil {
		return p, nil, err
	}
	job, err := h.jobs.GetForRecruiter(r.Context(), id, p.UserID)
	if err != nil {
		if isNoRows(err) {
			return p, nil, webutil.ErrNotFoundWrap("Job not found or access denied", err)
		}
		return p, nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return p, job, nil
}

func (h *JobHandler) HandleGetMyJob(w http.ResponseWriter, r *http.Request) error {
	_, job, err := h.ownJob(r)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"job":     job,
	})
	return nil
}

func (h *JobHandler) HandleUpdateJob(w http.ResponseWriter, r *http.Request) error {
	p, job, err := h.ownJob(r)
	if err != nil {
		return err
	}
	if err := h.requirePoster(r.Context(), p.UserID); err != nil {
		return err
	}
	var req jobRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if fields := h.apply(req, job, true); len(fields) > 0 {
		return jobValidationError(fields)
	}
	if err := h.jobs.Update(r.Context(), job); err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Job not found or access denied", err)
		}
		return fmt.Errorf("failed to update job %s for %s: %w", job.ID, p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Job updated successfully",
		"job":     job,
	})
	return nil
}

func (h *JobHandler) HandleListPublicJobs(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := datastore.JobFilter{Location: strings.TrimSpace(q.Get("location"))}
	if raw := strings.TrimSpace(q.Get("job_type")); raw != "" {
		jt, ok := models.IsValidJobType(raw)
		if !ok {
			return webutil.ErrBadRequest("Invalid job_type filter")
		}
		f.JobType = string(jt)
	}
	if raw := strings.TrimSpace(q.Get("work_mode")); raw != "" {
		wm, ok := models.IsValidJobWorkMode(raw)
		if !ok {
			return webutil.ErrBadRequest("Invalid work_mode filter")
		}
		f.WorkMode = string(wm)
	}

	jobs, err := h.jobs.ListPublished(r.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to list public jobs: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(jobs),
		"jobs":    jobs,
	})
	return nil
}

// HandleGetPublicJob shows a published job. Authentication is optional; a
// signed-in candidate also learns whether they already applied.
func (h *JobHandler) HandleGetPublicJob(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, paramID, "job")
	if err != nil {
		return err
	}
	job, err := h.jobs.GetPublished(r.Context(), id)
	if err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Job not found or not available", err)
		}
		return fmt.Errorf("failed to load job %s: %w", id, err)
	}

	hasApplied := false
	if p, ok := webutil.PrincipalFrom(r.Context()); ok && p.Role == models.RoleCandidate {
		app, err := h.applied.FindForCandidate(r.Context(), job.ID, p.UserID)
		if err != nil {
			return err
		}
		hasApplied = app != nil
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"job":         job,
		"has_applied": hasApplied,
	})
	return nil
}
