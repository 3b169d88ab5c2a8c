package routehandlers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/storage"
	"github.com/jobportal/jobportal/webutil"
)

type ProfileStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateResume(ctx context.Context, userID, fileName, filePath string, uploadedAt time.Time) error
	ListCandidates(ctx context.Context, f datastore.CandidateFilter) ([]models.User, error)
	CountCandidates(ctx context.Context) (int, error)
}

type PublishedJobCounter interface {
	CountPublishedByRecruiter(ctx context.Context, recruiterID string) (int, error)
}

type ApplicationCounter interface {
	CountForRecruiter(ctx context.Context, recruiterID string, status models.ApplicationStatus) (int, error)
}

type ProfileHandler struct {
	users ProfileStore
	jobs  PublishedJobCounter
	apps  ApplicationCounter
	files storage.FileStorer
	now   func() time.Time
}

func NewProfileHandler(users ProfileStore, jobs PublishedJobCounter, apps ApplicationCounter, files storage.FileStorer) *ProfileHandler {
	return &ProfileHandler{users: users, jobs: jobs, apps: apps, files: files, now: time.Now}
}

// profileView adds the derived fields clients read alongside the stored user.
type profileView struct {
	*models.User
	FullName   string   `json:"full_name"`
	Skills     []string `json:"skills"`
	SkillsList []string `json:"skills_list"`
}

func newProfileView(u *models.User) profileView {
	skills := u.SkillsList()
	return profileView{User: u, FullName: u.FullName(), Skills: skills, SkillsList: skills}
}

func (h *ProfileHandler) currentUser(r *http.Request) (*models.User, error) {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return nil, err
	}
	user, err := h.users.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", p.UserID, err)
	}
	return user, nil
}

func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, newProfileView(user))
	return nil
}

// profileUpdateRequest accepts both the camelCase and snake_case spellings
// clients send. Absent fields are left unchanged; empty strings clear
// optional fields.
type profileUpdateRequest struct {
	FirstName      *string     `json:"firstName"`
	FirstNameSnake *string     `json:"first_name"`
	LastName       *string     `json:"lastName"`
	LastNameSnake  *string     `json:"last_name"`
	Phone          *string     `json:"phone"`
	DOB            *string     `json:"dateOfBirth"`
	DOBSnake       *string     `json:"date_of_birth"`
	Gender         *string     `json:"gender"`
	Address        *string     `json:"address"`
	City           *string     `json:"city"`
	State          *string     `json:"state"`
	Pincode        *string     `json:"pincode"`
	Bio            *string     `json:"bio"`
	Skills         *stringList `json:"skills"`
	Experience     *string     `json:"experience"`
	Education      *string     `json:"education"`
	Linkedin       *string     `json:"linkedin"`
	LinkedinSnake  *string     `json:"linkedin_url"`
	Github         *string     `json:"github"`
	GithubSnake    *string     `json:"github_url"`
	Portfolio      *string     `json:"portfolio"`
	PortfolioSnake *string     `json:"portfolio_url"`
}

// apply copies the request onto u, collecting per-field validation errors.
func (req profileUpdateRequest) apply(u *models.User, now time.Time) map[string]string {
	fields := map[string]string{}

	if v := firstNonNil(req.FirstName, req.FirstNameSnake); v != nil {
		u.FirstName = strings.TrimSpace(*v)
	}
	if v := firstNonNil(req.LastName, req.LastNameSnake); v != nil {
		u.LastName = strings.TrimSpace(*v)
	}
	if req.Phone != nil {
		if strings.TrimSpace(*req.Phone) == "" {
			u.Phone = ""
		} else if phone, err := normalizePhone(*req.Phone); err != nil {
			fields["phone"] = err.Error()
		} else {
			u.Phone = phone
		}
	}
	if v := firstNonNil(req.DOB, req.DOBSnake); v != nil {
		if strings.TrimSpace(*v) == "" {
			u.DateOfBirth = nil
		} else if dob, err := parseDate(*v); err != nil {
			fields["dateOfBirth"] = "Date has wrong format. Use YYYY-MM-DD."
		} else if dob.After(today(now)) {
			fields["dateOfBirth"] = "Date of birth cannot be in the future."
		} else {
			u.DateOfBirth = &dob
		}
	}
	if req.Gender != nil {
		if strings.TrimSpace(*req.Gender) == "" {
			u.Gender = nil
		} else if g, ok := models.IsValidGender(*req.Gender); ok {
			u.Gender = &g
		} else {
			fields["gender"] = fmt.Sprintf("%q is not a valid choice.", *req.Gender)
		}
	}

	for _, f := range []struct {
		in  *string
		dst **string
	}{
		{req.Address, &u.Address},
		{req.City, &u.City},
		{req.State, &u.State},
		{req.Pincode, &u.Pincode},
		{req.Bio, &u.Bio},
		{req.Experience, &u.Experience},
		{req.Education, &u.Education},
	} {
		if f.in != nil {
			*f.dst = optionalString(f.in)
		}
	}
	if req.Skills != nil {
		joined := models.JoinCommaList(*req.Skills)
		u.Skills = optionalString(&joined)
	}

	for _, link := range []struct {
		name string
		in   *string
		dst  **string
	}{
		{"linkedin", firstNonNil(req.Linkedin, req.LinkedinSnake), &u.LinkedinURL},
		{"github", firstNonNil(req.Github, req.GithubSnake), &u.GithubURL},
		{"portfolio", firstNonNil(req.Portfolio, req.PortfolioSnake), &u.PortfolioURL},
	} {
		if link.in == nil {
			continue
		}
		v := withScheme(link.in)
		if v != nil && !isValidURL(*v) {
			fields[link.name] = "Enter a valid URL."
			continue
		}
		*link.dst = v
	}

	if u.FirstName == "" {
		fields["firstName"] = "This field may not be blank."
	}
	return fields
}

func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	var req profileUpdateRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if fields := req.apply(user, h.now()); len(fields) > 0 {
		httpErr := webutil.ErrValidation(fields)
		httpErr.Message = "Profile update failed"
		return httpErr
	}
	if err := h.users.UpdateProfile(r.Context(), user); err != nil {
		return fmt.Errorf("failed to update profile for %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    newProfileView(user),
	})
	return nil
}

func (h *ProfileHandler) HandleUploadResume(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	const tooLarge = "File size cannot exceed 5MB."
	if err := parseUpload(w, r, storage.ResumePolicy.MaxBytes+mbSlack, webutil.FieldError("resume_file", tooLarge)); err != nil {
		return err
	}
	_, fh, err := r.FormFile("resume_file")
	if err != nil {
		return webutil.FieldError("resume_file", "No file was submitted.")
	}
	path, err := storeFile(h.files, p.UserID, fh, storage.ResumePolicy,
		tooLarge, "Only PDF, DOC, and DOCX files are allowed.")
	if err != nil {
		return err
	}

	uploadedAt := h.now().UTC()
	if err := h.users.UpdateResume(r.Context(), p.UserID, fh.Filename, path, uploadedAt); err != nil {
		return fmt.Errorf("failed to record resume for %s: %w", p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Resume uploaded successfully",
		"resume": map[string]any{
			"file_name":   fh.Filename,
			"file_path":   path,
			"uploaded_at": uploadedAt,
		},
	})
	return nil
}

func (h *ProfileHandler) HandleResumeInfo(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"has_resume": user.Resume.FilePath != nil,
		"resume":     user.Resume,
		"upload_rules": map[string]any{
			"max_size_mb":        storage.ResumePolicy.MaxBytes / (1 << 20),
			"allowed_extensions": storage.ResumePolicy.Extensions,
			"field_name":         "resume_file",
		},
	})
	return nil
}

// HandleProfileStats returns dashboard numbers for the caller's role.
func (h *ProfileHandler) HandleProfileStats(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	memberSince := user.CreatedAt.Format("January 2006")

	if user.Role == models.RoleRecruiter {
		var candidates, activeJobs, received, interviews int
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			candidates, err = h.users.CountCandidates(ctx)
			return err
		})
		g.Go(func() (err error) {
			activeJobs, err = h.jobs.CountPublishedByRecruiter(ctx, user.ID)
			return err
		})
		g.Go(func() (err error) {
			received, err = h.apps.CountForRecruiter(ctx, user.ID, "")
			return err
		})
		g.Go(func() (err error) {
			interviews, err = h.apps.CountForRecruiter(ctx, user.ID, models.ApplicationInterviewScheduled)
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to compute recruiter stats: %w", err)
		}
		webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats": map[string]any{
				"total_candidates":      candidates,
				"active_jobs":           activeJobs,
				"applications_received": received,
				"interviews_scheduled":  interviews,
				"member_since":          memberSince,
			},
		})
		return nil
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"profile_completion": profileCompletion(user),
			"resume_uploaded":    user.Resume.FilePath != nil,
			"skills_count":       len(user.SkillsList()),
			"social_links_added": countSet(user.LinkedinURL, user.GithubURL, user.PortfolioURL),
			"member_since":       memberSince,
		},
	})
	return nil
}

// profileCompletion is the percentage of profile fields filled, to one decimal.
func profileCompletion(u *models.User) float64 {
	filled := countSet(u.Address, u.City, u.State, u.Pincode, u.Bio, u.Skills, u.Experience,
		u.Education, u.LinkedinURL, u.GithubURL, u.PortfolioURL, u.Resume.FilePath)
	for _, s := range []string{u.FirstName, u.LastName, u.Phone, u.Email} {
		if s != "" {
			filled++
		}
	}
	if u.DateOfBirth != nil {
		filled++
	}
	if u.Gender != nil {
		filled++
	}
	const total = 18
	return math.Round(float64(filled)/total*1000) / 10
}

func countSet(vals ...*string) int {
	n := 0
	for _, v := range vals {
		if v != nil && *v != "" {
			n++
		}
	}
	return n
}

type candidateCard struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Location    string             `json:"location"`
	Skills      []string           `json:"skills"`
	Experience  *string            `json:"experience"`
	SocialLinks map[string]*string `json:"social_links"`
	JoinedDate  string             `json:"joined_date"`
}

const experiencePreviewLen = 100

func newCandidateCard(u *models.User) candidateCard {
	location := "Not specified"
	if u.City != nil && u.State != nil && *u.City != "" && *u.State != "" {
		location = *u.City + ", " + *u.State
	}
	exp := u.Experience
	if exp != nil && len([]rune(*exp)) > experiencePreviewLen {
		short := string([]rune(*exp)[:experiencePreviewLen]) + "..."
		exp = &short
	}
	return candidateCard{
		ID:         u.ID,
		Name:       u.FullName(),
		Email:      u.Email,
		Phone:      u.Phone,
		Location:   location,
		Skills:     u.SkillsList(),
		Experience: exp,
		SocialLinks: map[string]*string{
			"linkedin":  u.LinkedinURL,
			"github":    u.GithubURL,
			"portfolio": u.PortfolioURL,
		},
		JoinedDate: u.CreatedAt.Format(dateLayout),
	}
}

// HandleListCandidates is the recruiter-facing candidate directory.
func (h *ProfileHandler) HandleListCandidates(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.ListCandidates(r.Context(), datastore.CandidateFilter{})
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	cards := make([]candidateCard, 0, len(users))
	for i := range users {
		cards = append(cards, newCandidateCard(&users[i]))
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"candidates": cards,
		"total":      len(cards),
	})
	return nil
}
