package routehandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
	"github.com/jobportal/jobportal/webutil"
)

type CollegeApplicationStore interface {
	Create(ctx context.Context, c *models.CollegeApplication) error
	ListByUser(ctx context.Context, userID string) ([]models.CollegeApplication, error)
	List(ctx context.Context, f datastore.CollegeApplicationFilter) ([]models.CollegeApplication, error)
	GetByID(ctx context.Context, id, userID string) (*models.CollegeApplication, error)
	UpdateStatus(ctx context.Context, id string, status models.CollegeApplicationStatus, notes *string) error
	Delete(ctx context.Context, id string) error
}

type AdmissionHandler struct {
	applications CollegeApplicationStore
	notifier     notify.Notifier
	now          func() time.Time
}

func NewAdmissionHandler(applications CollegeApplicationStore, notifier notify.Notifier) *AdmissionHandler {
	return &AdmissionHandler{applications: applications, notifier: notifier, now: time.Now}
}

// flexFloat accepts a JSON number or a numeric string such as "82.5" or "82.5%".
type flexFloat struct {
	Set   bool
	Value float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		f.Set, f.Value = true, v
	case string:
		v = strings.TrimSuffix(strings.TrimSpace(v), "%")
		if v == "" {
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("a valid number is required")
		}
		f.Set, f.Value = true, n
	default:
		return fmt.Errorf("a valid number is required")
	}
	return nil
}

type admissionFormData struct {
	FullName      *string   `json:"fullName"`
	FullNameSn    *string   `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	DateOfBirth   *string   `json:"dateOfBirth"`
	DateOfBirthSn *string   `json:"date_of_birth"`
	Gender        string    `json:"gender"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Pincode       string    `json:"pincode"`
	Qualification string    `json:"qualification"`
	Percentage    flexFloat `json:"percentage"`
	Course        string    `json:"course"`
	Branch        *string   `json:"branch"`
	Message       *string   `json:"message"`
}

type admissionRequest struct {
	College         json.RawMessage    `json:"college"`
	ApplicationData *admissionFormData `json:"applicationData"`
}

type collegeRecord struct {
	Name string `json:"name"`
}

// toApplication validates the form and builds the record owned by userID.
func (d admissionFormData) toApplication(userID, collegeName string, collegeData json.RawMessage, now time.Time) (*models.CollegeApplication, map[string]string) {
	fields := map[string]string{}
	required := func(name, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			fields[name] = "This field is required."
		}
		return v
	}

	app := &models.CollegeApplication{
		UserID:        userID,
		CollegeName:   collegeName,
		CollegeData:   collegeData,
		Status:        models.CollegePending,
		Address:       required("address", d.Address),
		City:          required("city", d.City),
		State:         required("state", d.State),
		Qualification: required("qualification", d.Qualification),
		Course:        required("course", d.Course),
		Branch:        optionalString(d.Branch),
		Message:       optionalString(d.Message),
	}
	if name := firstNonNil(d.FullName, d.FullNameSn); name != nil {
		app.FullName = required("full_name", *name)
	} else {
		fields["full_name"] = "This field is required."
	}

	email := strings.ToLower(strings.TrimSpace(d.Email))
	if !strings.Contains(email, "@") {
		fields["email"] = "Please enter a valid email address."
	}
	app.Email = email

	phone := strings.TrimSpace(d.Phone)
	switch {
	case phone == "":
		fields["phone"] = "Phone number is required."
	case len(models.DigitsOnly(phone)) < 10:
		fields["phone"] = "Please enter a valid phone number."
	}
	app.Phone = phone

	pincode := strings.TrimSpace(d.Pincode)
	if !models.IsValidPincode(pincode) {
		fields["pincode"] = "Please enter a valid 6-digit pincode."
	}
	app.Pincode = pincode

	if g, ok := models.IsValidGender(d.Gender); ok {
		app.Gender = g
	} else {
		fields["gender"] = "Please select a valid gender."
	}

	if dob := firstNonNil(d.DateOfBirth, d.DateOfBirthSn); dob == nil || strings.TrimSpace(*dob) == "" {
		fields["date_of_birth"] = "This field is required."
	} else if t, err := parseDate(*dob); err != nil {
		fields["date_of_birth"] = "Date has wrong format. Use YYYY-MM-DD."
	} else if t.After(today(now)) {
		fields["date_of_birth"] = "Date of birth cannot be in the future."
	} else {
		app.DateOfBirth = t
	}

	switch {
	case !d.Percentage.Set:
		fields["percentage"] = "This field is required."
	case d.Percentage.Value < 0 || d.Percentage.Value > 100:
		fields["percentage"] = "Percentage must be between 0 and 100."
	default:
		app.Percentage = d.Percentage.Value
	}
	return app, fields
}

// HandleApply records an admission request for the caller.
func (h *AdmissionHandler) HandleApply(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req admissionRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}

	var college collegeRecord
	if len(req.College) > 0 && !bytes.Equal(req.College, []byte("null")) {
		if err := json.Unmarshal(req.College, &college); err != nil {
			return webutil.ErrBadRequestWrap("Invalid college data", err)
		}
	}
	if len(req.College) == 0 || req.ApplicationData == nil {
		return webutil.ErrBadRequest("Missing college or application data")
	}
	collegeName := strings.TrimSpace(college.Name)

	app, fields := req.ApplicationData.toApplication(p.UserID, collegeName, req.College, h.now())
	if collegeName == "" {
		fields["college_name"] = "This field is required."
	}
	if len(fields) > 0 {
		httpErr := webutil.ErrValidation(fields)
		httpErr.Message = "Failed to submit application"
		return httpErr
	}

	if err := h.applications.Create(r.Context(), app); err != nil {
		if isDuplicate(err) {
			return webutil.ErrBadRequestWrap("You have already applied to this college.", err)
		}
		return fmt.Errorf("failed to create college application for %s: %w", p.UserID, err)
	}
	slog.InfoContext(r.Context(), "College application submitted", "application_id", app.ID, "user_id", p.UserID, "college", collegeName)

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "Application submitted successfully! Admin will review your application.",
		"application": app,
	})
	return nil
}

func (h *AdmissionHandler) HandleListMine(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	apps, err := h.applications.ListByUser(r.Context(), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to list college applications for %s: %w", p.UserID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(apps),
		"applications": apps,
	})
	return nil
}

// load fetches an application; ownerID restricts it to one user, empty means any.
func (h *AdmissionHandler) load(r *http.Request, ownerID string) (*models.CollegeApplication, error) {
	id, err := uuidParam(r, paramID, "application")
	if err != nil {
		return nil, err
	}
	app, err := h.applications.GetByID(r.Context(), id, ownerID)
	if err != nil {
		if isNoRows(err) {
			return nil, webutil.ErrNotFoundWrap("Application not found", err)
		}
		return nil, fmt.Errorf("failed to load college application %s: %w", id, err)
	}
	return app, nil
}

func (h *AdmissionHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	app, err := h.load(r, p.UserID)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "application": app})
	return nil
}

func (h *AdmissionHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := datastore.CollegeApplicationFilter{
		Status:  strings.TrimSpace(q.Get("status")),
		College: strings.TrimSpace(q.Get("college")),
	}
	apps, err := h.applications.List(r.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to list college applications: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(apps),
		"applications": apps,
	})
	return nil
}

func (h *AdmissionHandler) HandleAdminGet(w http.ResponseWriter, r *http.Request) error {
	app, err := h.load(r, "")
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "application": app})
	return nil
}

type admissionStatusRequest struct {
	Status     *string `json:"status"`
	AdminNotes *string `json:"admin_notes"`
}

// HandleAdminUpdateStatus is a partial update of status and admin notes.
func (h *AdmissionHandler) HandleAdminUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	app, err := h.load(r, "")
	if err != nil {
		return err
	}
	var req admissionStatusRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}

	status := app.Status
	if req.Status != nil {
		st, ok := models.IsValidCollegeApplicationStatus(*req.Status)
		if !ok {
			httpErr := webutil.ErrValidation(map[string]string{"status": "Invalid status."})
			httpErr.Message = "Failed to update application status"
			return httpErr
		}
		status = st
	}
	notes := app.AdminNotes
	if req.AdminNotes != nil {
		notes = optionalString(req.AdminNotes)
	}

	if err := h.applications.UpdateStatus(r.Context(), app.ID, status, notes); err != nil {
		return fmt.Errorf("failed to update college application %s: %w", app.ID, err)
	}
	changed := app.Status != status
	app.Status, app.AdminNotes = status, notes
	app.UpdatedAt = h.now().UTC()

	if changed {
		h.notifier.Notify(r.Context(), notify.Event{
			Type:           notify.EventAdmissionStatus,
			RecipientID:    app.UserID,
			RecipientEmail: app.Email,
			RecipientName:  app.FullName,
			Subject:        "Update on your application to " + app.CollegeName,
			Message:        fmt.Sprintf("Your application to %s is now %s.", app.CollegeName, strings.ReplaceAll(string(status), "_", " ")),
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

func (h *AdmissionHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) error {
	app, err := h.load(r, "")
	if err != nil {
		return err
	}
	if err := h.applications.Delete(r.Context(), app.ID); err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Application not found", err)
		}
		return fmt.Errorf("failed to delete college application %s: %w", app.ID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf(`Application "%s → %s" deleted successfully`, app.FullName, app.CollegeName),
	})
	return nil
}
