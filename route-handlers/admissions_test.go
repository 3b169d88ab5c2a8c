package routehandlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
)

func admissionForm() map[string]any {
	return map[string]any{
		"fullName":      "Asha Kumari",
		"email":         "Asha@Example.com",
		"phone":         "+91 98765 43210",
		"dateOfBirth":   "2004-08-12",
		"gender":        "female",
		"address":       "12 MG Road",
		"city":          "Pune",
		"state":         "Maharashtra",
		"pincode":       "411001",
		"qualification": "12th",
		"percentage":    "88.4%",
		"course":        "B.Tech",
		"branch":        "CSE",
	}
}

func newAdmissionFixture() (*AdmissionHandler, *fakeColleges, *captureNotifier) {
	store := newFakeColleges()
	notifier := &captureNotifier{}
	h := NewAdmissionHandler(store, notifier)
	h.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return h, store, notifier
}

func TestAdmissionApply(t *testing.T) {
	h, _, _ := newAdmissionFixture()
	user := newCandidate("asha@example.com")
	body := map[string]any{"college": map[string]any{"name": "COEP", "city": "Pune"}, "applicationData": admissionForm()}

	rec := serve(t, h.HandleApply, request{method: http.MethodPost, target: "/", body: body, principal: as(user)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Equal(t, "Application submitted successfully! Admin will review your application.", got["message"])
	app := got["application"].(map[string]any)
	assert.Equal(t, "COEP", app["college_name"])
	assert.Equal(t, "asha@example.com", app["email"])
	assert.Equal(t, 88.4, app["percentage"])
	assert.Equal(t, "pending", app["status"])
	assert.Equal(t, "Pune", app["college_data"].(map[string]any)["city"])

	rec = serve(t, h.HandleApply, request{method: http.MethodPost, target: "/", body: body, principal: as(user)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You have already applied to this college.", decode(t, rec)["error"])
}

func TestAdmissionApplyValidation(t *testing.T) {
	h, _, _ := newAdmissionFixture()
	user := newCandidate("asha@example.com")

	rec := serve(t, h.HandleApply, request{method: http.MethodPost, target: "/", body: map[string]any{"college": map[string]any{"name": "COEP"}}, principal: as(user)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing college or application data", decode(t, rec)["error"])

	form := admissionForm()
	form["email"] = "nope"
	form["phone"] = "12345"
	form["pincode"] = "41100"
	form["percentage"] = 140
	form["dateOfBirth"] = "2030-01-01"
	delete(form, "course")
	rec = serve(t, h.HandleApply, request{method: http.MethodPost, target: "/", body: map[string]any{"college": map[string]any{}, "applicationData": form}, principal: as(user)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Failed to submit application", got["error"])
	fields := got["fields"].(map[string]any)
	assert.Equal(t, "Please enter a valid email address.", fields["email"])
	assert.Equal(t, "Please enter a valid phone number.", fields["phone"])
	assert.Equal(t, "Please enter a valid 6-digit pincode.", fields["pincode"])
	assert.Equal(t, "Percentage must be between 0 and 100.", fields["percentage"])
	assert.Equal(t, "Date of birth cannot be in the future.", fields["date_of_birth"])
	assert.Equal(t, "This field is required.", fields["course"])
	assert.Equal(t, "This field is required.", fields["college_name"])
}

func TestAdmissionOwnershipAndAdminFlow(t *testing.T) {
	h, store, notifier := newAdmissionFixture()
	owner, other, admin := newCandidate("asha@example.com"), newCandidate("vik@example.com"), newAdmin()

	rec := serve(t, h.HandleApply, request{
		method:    http.MethodPost,
		target:    "/",
		body:      map[string]any{"college": map[string]any{"name": "COEP"}, "applicationData": admissionForm()},
		principal: as(owner),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["application"].(map[string]any)["id"].(string)
	params := map[string]string{paramID: id}

	rec = serve(t, h.HandleGetMine, request{target: "/", principal: as(owner), params: params})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, h.HandleGetMine, request{target: "/", principal: as(other), params: params})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h.HandleListMine, request{target: "/", principal: as(other)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["count"])

	rec = serve(t, h.HandleAdminList, request{target: "/?status=pending&college=coe", principal: as(admin)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = serve(t, h.HandleAdminUpdateStatus, request{method: http.MethodPatch, target: "/", body: map[string]string{"status": "enrolled"}, principal: as(admin), params: params})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Failed to update application status", got["error"])
	assert.Equal(t, "Invalid status.", got["fields"].(map[string]any)["status"])

	rec = serve(t, h.HandleAdminUpdateStatus, request{method: http.MethodPatch, target: "/", body: map[string]string{"admin_notes": "docs pending"}, principal: as(admin), params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, notifier.sent())
	assert.Equal(t, models.CollegePending, store.apps[id].Status)

	rec = serve(t, h.HandleAdminUpdateStatus, request{method: http.MethodPatch, target: "/", body: map[string]string{"status": "approved"}, principal: as(admin), params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CollegeApproved, store.apps[id].Status)
	assert.Equal(t, "docs pending", *store.apps[id].AdminNotes)
	events := notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventAdmissionStatus, events[0].Type)
	assert.Equal(t, "asha@example.com", events[0].RecipientEmail)

	rec = serve(t, h.HandleAdminDelete, request{method: http.MethodDelete, target: "/", principal: as(admin), params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `Application "Asha Kumari → COEP" deleted successfully`, decode(t, rec)["message"])

	rec = serve(t, h.HandleAdminGet, request{target: "/", principal: as(admin), params: params})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
