package routehandlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/approval"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
)

type adminFixture struct {
	h         *AdminHandler
	users     *fakeUsers
	companies *fakeCompanies
	notifier  *captureNotifier
	admin     *models.User
}

func newAdminFixture(users ...*models.User) adminFixture {
	admin := newAdmin()
	store := newFakeUsers(append(users, admin)...)
	companies := newFakeCompanies(store)
	notifier := &captureNotifier{}
	svc := approval.NewService(store, companies, notifier)
	return adminFixture{
		h:         NewAdminHandler(store, companies, svc),
		users:     store,
		companies: companies,
		notifier:  notifier,
		admin:     admin,
	}
}

func TestApproveRecruiter(t *testing.T) {
	incomplete := newRecruiter("new@acme.io", false, false)
	ready := newRecruiter("ready@acme.io", false, true)
	f := newAdminFixture(incomplete, ready)

	rec := serve(t, f.h.HandleApproveRecruiter, request{method: http.MethodPut, target: "/", principal: as(f.admin), params: map[string]string{paramID: incomplete.ID}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Cannot approve recruiter. Profile not completed.", body["error"])
	assert.Contains(t, body["fields"], "profile")

	rec = serve(t, f.h.HandleApproveRecruiter, request{method: http.MethodPut, target: "/", principal: as(f.admin), params: map[string]string{paramID: ready.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, "Recruiter approved successfully. They can now post jobs.", body["message"])
	assert.Equal(t, true, body["recruiter"].(map[string]any)["can_post_jobs"])

	events := f.notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventRecruiterApproved, events[0].Type)
	assert.Equal(t, "ready@acme.io", events[0].RecipientEmail)

	rec = serve(t, f.h.HandleApproveRecruiter, request{method: http.MethodPut, target: "/", principal: as(f.admin), params: map[string]string{paramID: f.admin.ID}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, f.h.HandleApproveRecruiter, request{method: http.MethodPut, target: "/", principal: as(f.admin), params: map[string]string{paramID: "nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectRecruiter(t *testing.T) {
	recruiter := newRecruiter("hr@acme.io", true, true)
	f := newAdminFixture(recruiter)

	rec := serve(t, f.h.HandleRejectRecruiter, request{
		method:    http.MethodPut,
		target:    "/",
		principal: as(f.admin),
		params:    map[string]string{paramID: recruiter.ID},
		body:      map[string]string{"reason": "  Unverifiable company  "},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Recruiter rejected successfully.", body["message"])
	assert.Equal(t, "Unverifiable company", body["rejection_reason"])

	u, err := f.users.GetUserByID(context.Background(), recruiter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, u.Approval)
	assert.False(t, u.CanPostJobs())

	events := f.notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, "Unverifiable company", events[0].Data["reason"])
}

func TestListRecruitersFilters(t *testing.T) {
	f := newAdminFixture(
		newRecruiter("a@acme.io", true, true),
		newRecruiter("b@acme.io", false, true),
		newRecruiter("c@acme.io", false, false),
	)

	list := func(query string) map[string]any {
		rec := serve(t, f.h.HandleListRecruiters, request{target: "/?" + query, principal: as(f.admin)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode(t, rec)
	}
	assert.EqualValues(t, 3, list("")["total"])
	assert.EqualValues(t, 2, list("status=pending")["total"])
	assert.EqualValues(t, 1, list("status=pending&profile_completed=true")["total"])

	rec := serve(t, f.h.HandleListRecruiters, request{target: "/?status=bogus", principal: as(f.admin)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecruiterIncludesCompany(t *testing.T) {
	recruiter := newRecruiter("hr@acme.io", false, true)
	f := newAdminFixture(recruiter)
	f.companies.put(&models.RecruiterCompanyProfile{RecruiterID: recruiter.ID, CompanyName: "Acme"})

	rec := serve(t, f.h.HandleGetRecruiter, request{target: "/", principal: as(f.admin), params: map[string]string{paramID: recruiter.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode(t, rec)["recruiter"].(map[string]any)
	assert.Equal(t, "Acme", r["company_profile"].(map[string]any)["company_name"])

	rec = serve(t, f.h.HandleGetRecruiter, request{target: "/", principal: as(f.admin), params: map[string]string{paramID: uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyCompany(t *testing.T) {
	recruiter := newRecruiter("hr@acme.io", false, true)
	f := newAdminFixture(recruiter)
	profile := &models.RecruiterCompanyProfile{RecruiterID: recruiter.ID, CompanyName: "Acme", VerificationStatus: models.VerificationPending}
	f.companies.put(profile)

	rec := serve(t, f.h.HandleListCompanyProfiles, request{target: "/?status=pending", principal: as(f.admin)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = serve(t, f.h.HandleVerifyCompany, request{
		method:    http.MethodPut,
		target:    "/",
		principal: as(f.admin),
		params:    map[string]string{paramID: profile.ID},
		body:      map[string]any{"verification_status": "verified", "verification_notes": "GST checked"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Company profile verified successfully", body["message"])
	assert.Equal(t, models.VerificationMessage(models.VerificationVerified), body["notification_message"])

	events := f.notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventCompanyVerification, events[0].Type)
	assert.Equal(t, "hr@acme.io", events[0].RecipientEmail)

	rec = serve(t, f.h.HandleVerifyCompany, request{
		method:    http.MethodPut,
		target:    "/",
		principal: as(f.admin),
		params:    map[string]string{paramID: profile.ID},
		body:      map[string]any{"verification_status": "approved"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f.h.HandleVerifyCompany, request{
		method:    http.MethodPut,
		target:    "/",
		principal: as(f.admin),
		params:    map[string]string{paramID: uuid.NewString()},
		body:      map[string]any{"verification_status": "verified"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
