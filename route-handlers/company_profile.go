package routehandlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/storage"
	"github.com/jobportal/jobportal/webutil"
)

type CompanyProfileStore interface {
	Create(ctx context.Context, p *models.RecruiterCompanyProfile) error
	Update(ctx context.Context, p *models.RecruiterCompanyProfile) error
	GetByRecruiterID(ctx context.Context, recruiterID string) (*models.RecruiterCompanyProfile, error)
	SetRegistrationDocument(ctx context.Context, recruiterID, path string) error
	AppendOfficePhotos(ctx context.Context, recruiterID string, photos []string) ([]string, error)
}

type CompanyProfileHandler struct {
	profiles CompanyProfileStore
	users    UserReader
	files    storage.FileStorer
	now      func() time.Time
}

type UserReader interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

func NewCompanyProfileHandler(profiles CompanyProfileStore, users UserReader, files storage.FileStorer) *CompanyProfileHandler {
	return &CompanyProfileHandler{profiles: profiles, users: users, files: files, now: time.Now}
}

// companyProfileView is the profile as the owning recruiter sees it.
type companyProfileView struct {
	*models.RecruiterCompanyProfile
	RecruiterName  string `json:"recruiter_name"`
	RecruiterEmail string `json:"recruiter_email"`
	CanPostJobs    bool   `json:"can_post_jobs"`
}

func (h *CompanyProfileHandler) view(ctx context.Context, p *models.RecruiterCompanyProfile) companyProfileView {
	v := companyProfileView{RecruiterCompanyProfile: p}
	if u, err := h.users.GetUserByID(ctx, p.RecruiterID); err == nil {
		v.RecruiterName = u.FullName()
		v.RecruiterEmail = u.Email
		v.CanPostJobs = u.CanPostJobs()
	}
	return v
}

// companyProfileRequest carries the recruiter-editable fields. Verification
// fields are not part of it, so recruiters cannot set them.
type companyProfileRequest struct {
	CompanyName        *string     `json:"company_name"`
	Website            *string     `json:"website"`
	Industry           *string     `json:"industry"`
	CompanySize        *string     `json:"company_size"`
	FoundedYear        flexInt     `json:"founded_year"`
	HeadOfficeLocation *string     `json:"head_office_location"`
	GSTCIN             *string     `json:"gst_cin"`
	CompanyDescription *string     `json:"company_description"`
	MissionAndCulture  *string     `json:"mission_and_culture"`
	Benefits           *stringList `json:"benefits_list"`
	BenefitsText       *stringList `json:"benefits_and_perks"`
	OfficeAddress      *string     `json:"office_address"`
	WorkMode           *string     `json:"work_mode"`
}

// apply writes the request onto p. With partial false every required field must be present.
func (req companyProfileRequest) apply(p *models.RecruiterCompanyProfile, partial bool, now time.Time) map[string]string {
	fields := map[string]string{}
	required := func(name string, in *string, dst *string) {
		if in == nil {
			if !partial {
				fields[name] = "This field is required."
			}
			return
		}
		v := strings.TrimSpace(*in)
		if v == "" {
			fields[name] = "This field may not be blank."
			return
		}
		*dst = v
	}

	required("company_name", req.CompanyName, &p.CompanyName)
	required("industry", req.Industry, &p.Industry)
	required("head_office_location", req.HeadOfficeLocation, &p.HeadOfficeLocation)
	required("company_description", req.CompanyDescription, &p.CompanyDescription)
	required("office_address", req.OfficeAddress, &p.OfficeAddress)

	var size, mode string
	required("company_size", req.CompanySize, &size)
	if size != "" {
		if cs, ok := models.IsValidCompanySize(size); ok {
			p.CompanySize = cs
		} else {
			fields["company_size"] = fmt.Sprintf("%q is not a valid choice.", size)
		}
	}
	if req.WorkMode != nil {
		mode = strings.TrimSpace(*req.WorkMode)
	} else if !partial && p.WorkMode == "" {
		mode = string(models.CompanyWorkOffice)
	}
	if mode != "" {
		if wm, ok := models.IsValidCompanyWorkMode(mode); ok {
			p.WorkMode = wm
		} else {
			fields["work_mode"] = fmt.Sprintf("%q is not a valid choice.", mode)
		}
	}

	if req.Website != nil {
		site := optionalString(req.Website)
		if site != nil && !isValidURL(*site) {
			fields["website"] = "Please enter a valid website URL."
		} else {
			p.Website = withScheme(site)
		}
	}
	if req.FoundedYear.Set {
		if y := req.FoundedYear.Value; y != nil && !models.IsValidFoundedYear(*y, now) {
			fields["founded_year"] = fmt.Sprintf("Founded year must be between 1800 and %d.", now.Year())
		} else {
			p.FoundedYear = y
		}
	}
	if req.GSTCIN != nil {
		if v := optionalString(req.GSTCIN); v == nil {
			p.GSTCIN = nil
		} else if norm, ok := models.NormalizeGSTCIN(*v); ok {
			p.GSTCIN = &norm
		} else {
			fields["gst_cin"] = "GST/CIN must be at least 10 characters long."
		}
	}
	if req.MissionAndCulture != nil {
		p.MissionAndCulture = optionalString(req.MissionAndCulture)
	}
	if b := firstNonNil(req.Benefits, req.BenefitsText); b != nil {
		p.Benefits = *b
	}
	return fields
}

func companyValidationError(fields map[string]string, msg string) error {
	httpErr := webutil.ErrValidation(fields)
	httpErr.Message = msg
	return httpErr
}

const (
	msgCompanyProfileMissing = "Company profile not found. Please create your company profile."
	msgCreateProfileFirst    = "Company profile not found. Please create your profile first."
)

func (h *CompanyProfileHandler) ownProfile(r *http.Request, missingMsg string) (webutil.Principal, *models.RecruiterCompanyProfile, error) {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return p, nil, err
	}
	profile, err := h.profiles.GetByRecruiterID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, nil, webutil.ErrNotFoundWrap(missingMsg, err)
		}
		return p, nil, fmt.Errorf("failed to load company profile for %s: %w", p.UserID, err)
	}
	return p, profile, nil
}

func (h *CompanyProfileHandler) HandleGetCompanyProfile(w http.ResponseWriter, r *http.Request) error {
	_, profile, err := h.ownProfile(r, msgCompanyProfileMissing)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"profile": h.view(r.Context(), profile),
	})
	return nil
}

// HandleCreateCompanyProfile creates the caller's profile. The owner always
// comes from the token, never the body.
func (h *CompanyProfileHandler) HandleCreateCompanyProfile(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req companyProfileRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}

	profile := &models.RecruiterCompanyProfile{RecruiterID: p.UserID}
	if fields := req.apply(profile, false, h.now()); len(fields) > 0 {
		return companyValidationError(fields, "Failed to create company profile")
	}
	if err := h.profiles.Create(r.Context(), profile); err != nil {
		if isDuplicate(err) {
			return webutil.ErrBadRequestWrap("Company profile already exists. Use PUT to update.", err)
		}
		return fmt.Errorf("failed to create company profile for %s: %w", p.UserID, err)
	}

	slog.InfoContext(r.Context(), "Company profile created", "recruiter_id", p.UserID, "profile_id", profile.ID)
	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Company profile created successfully",
		"profile": h.view(r.Context(), profile),
	})
	return nil
}

func (h *CompanyProfileHandler) HandleUpdateCompanyProfile(w http.ResponseWriter, r *http.Request) error {
	p, profile, err := h.ownProfile(r, msgCreateProfileFirst)
	if err != nil {
		return err
	}
	var req companyProfileRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if fields := req.apply(profile, true, h.now()); len(fields) > 0 {
		return companyValidationError(fields, "Failed to update company profile")
	}
	if err := h.profiles.Update(r.Context(), profile); err != nil {
		return fmt.Errorf("failed to update company profile for %s: %w", p.UserID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "success",
		"message": "Company profile updated successfully",
		"profile": h.view(r.Context(), profile),
	})
	return nil
}

func (h *CompanyProfileHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) error {
	p, _, err := h.ownProfile(r, msgCompanyProfileMissing)
	if err != nil {
		return err
	}
	policy := storage.RegistrationDocumentPolicy
	tooLarge := "File size too large. Maximum size is 10MB."
	if err := parseUpload(w, r, policy.MaxBytes+mbSlack, webutil.ErrBadRequest(tooLarge)); err != nil {
		return err
	}
	_, fh, err := r.FormFile("document")
	if err != nil {
		return webutil.ErrBadRequest("No document file provided")
	}
	path, err := storeFile(h.files, p.UserID, fh, policy, tooLarge,
		"Invalid file type. Only PDF, DOC, DOCX, JPG, JPEG, PNG files are allowed.")
	if err != nil {
		return err
	}
	if err := h.profiles.SetRegistrationDocument(r.Context(), p.UserID, path); err != nil {
		return fmt.Errorf("failed to record registration document for %s: %w", p.UserID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Company document uploaded successfully",
		"document_url": path,
	})
	return nil
}

// maxPhotoUploadBytes bounds one photo upload request.
const maxPhotoUploadBytes = 50 << 20

// HandleUploadPhotos stores every acceptable photo and appends it to the
// profile. Files failing the type or size rules are skipped.
func (h *CompanyProfileHandler) HandleUploadPhotos(w http.ResponseWriter, r *http.Request) error {
	p, profile, err := h.ownProfile(r, msgCompanyProfileMissing)
	if err != nil {
		return err
	}
	if err := parseUpload(w, r, maxPhotoUploadBytes, errUploadTooLarge); err != nil {
		return err
	}
	headers := r.MultipartForm.File["photos"]
	if len(headers) == 0 {
		return webutil.ErrBadRequest("No photo files provided")
	}

	var added []string
	for _, fh := range headers {
		path, err := storeFile(h.files, p.UserID, fh, storage.OfficePhotoPolicy, "too large", "unsupported type")
		if err != nil {
			var httpErr *webutil.HTTPError
			if errors.As(err, &httpErr) && httpErr.Code == http.StatusBadRequest {
				slog.InfoContext(r.Context(), "Skipping office photo", "file", fh.Filename, "reason", httpErr.Message)
				continue
			}
			return err
		}
		added = append(added, path)
	}
	photos := profile.OfficePhotos
	if len(added) > 0 {
		photos, err = h.profiles.AppendOfficePhotos(r.Context(), p.UserID, added)
		if err != nil {
			return fmt.Errorf("failed to record office photos for %s: %w", p.UserID, err)
		}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d office photos uploaded successfully", len(added)),
		"photos":  photos,
	})
	return nil
}
