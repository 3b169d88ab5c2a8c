package routehandlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
)

type applicationFixture struct {
	h         *ApplicationHandler
	jobs      *fakeJobs
	apps      *fakeApplications
	notifier  *captureNotifier
	recruiter *models.User
	candidate *models.User
	job       *models.JobPost
}

func newApplicationFixture() applicationFixture {
	recruiter := newRecruiter("hr@acme.io", true, true)
	candidate := newCandidate("asha@example.com")
	job := &models.JobPost{ID: uuid.NewString(), RecruiterID: recruiter.ID, JobTitle: "Go Dev", CompanyName: "Acme", IsPublished: true}
	jobs := newFakeJobs(job)
	apps := newFakeApplications(jobs)
	notifier := &captureNotifier{}
	h := NewApplicationHandler(apps, jobs, newFakeUsers(recruiter, candidate), notifier)
	h.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return applicationFixture{h: h, jobs: jobs, apps: apps, notifier: notifier, recruiter: recruiter, candidate: candidate, job: job}
}

func (f applicationFixture) apply(t *testing.T, who *models.User, jobID string, body any) (int, map[string]any) {
	t.Helper()
	rec := serve(t, f.h.HandleApply, request{method: http.MethodPost, target: "/", body: body, principal: as(who), params: map[string]string{paramID: jobID}})
	return rec.Code, decode(t, rec)
}

func TestApplyToJob(t *testing.T) {
	f := newApplicationFixture()

	code, body := f.apply(t, f.recruiter, f.job.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only candidates can apply for jobs", body["error"])

	code, body = f.apply(t, f.candidate, f.job.ID, map[string]string{"coverLetter": "Hire me"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Application submitted successfully!", body["message"])
	app := body["application"].(map[string]any)
	assert.Equal(t, "Hire me", app["cover_letter"])
	assert.Equal(t, "applied", app["status"])

	code, body = f.apply(t, f.candidate, f.job.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You have already applied for this job", body["error"])

	events := f.notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventApplicationReceived, events[0].Type)
	assert.Equal(t, "hr@acme.io", events[0].RecipientEmail)
}

func TestApplyRejectsUnavailableJobs(t *testing.T) {
	f := newApplicationFixture()
	draft := &models.JobPost{ID: uuid.NewString(), RecruiterID: f.recruiter.ID, JobTitle: "Draft"}
	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	expired := &models.JobPost{ID: uuid.NewString(), RecruiterID: f.recruiter.ID, JobTitle: "Old", IsPublished: true, ApplicationDeadline: &past}
	f.jobs.jobs[draft.ID] = draft
	f.jobs.jobs[expired.ID] = expired

	code, body := f.apply(t, f.candidate, draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Job not found or not available", body["error"])

	code, _ = f.apply(t, f.candidate, expired.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.apply(t, f.candidate, "not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCheckStatus(t *testing.T) {
	f := newApplicationFixture()
	check := func(who *models.User) map[string]any {
		rec := serve(t, f.h.HandleCheckStatus, request{target: "/", principal: as(who), params: map[string]string{paramID: f.job.ID}})
		require.Equal(t, http.StatusOK, rec.Code)
		return decode(t, rec)
	}
	assert.Equal(t, false, check(f.candidate)["has_applied"])

	code, _ := f.apply(t, f.candidate, f.job.ID, nil)
	require.Equal(t, http.StatusCreated, code)

	body := check(f.candidate)
	assert.Equal(t, true, body["has_applied"])
	assert.Equal(t, "applied", body["application"].(map[string]any)["status"])
	assert.Equal(t, false, check(f.recruiter)["has_applied"])
}

func TestRecruiterApplicationsAndStatusUpdate(t *testing.T) {
	f := newApplicationFixture()
	code, _ := f.apply(t, f.candidate, f.job.ID, nil)
	require.Equal(t, http.StatusCreated, code)
	mine, err := f.apps.ListByCandidate(context.Background(), f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	appID := mine[0].ID
	f.apps.apps[appID].CandidateEmail = f.candidate.Email

	rec := serve(t, f.h.HandleListRecruiterApplications, request{target: "/?status=applied&job_id=" + f.job.ID, principal: as(f.recruiter)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = serve(t, f.h.HandleListRecruiterApplications, request{target: "/?status=hired", principal: as(f.recruiter)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := newRecruiter("other@acme.io", true, true)
	rec = serve(t, f.h.HandleUpdateStatus, request{method: http.MethodPut, target: "/", body: map[string]string{"status": "shortlisted"}, principal: as(other), params: map[string]string{paramID: appID}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decode(t, rec)["error"])

	rec = serve(t, f.h.HandleUpdateStatus, request{method: http.MethodPut, target: "/", body: map[string]string{"status": "hired"}, principal: as(f.recruiter), params: map[string]string{paramID: appID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", decode(t, rec)["error"])

	rec = serve(t, f.h.HandleUpdateStatus, request{
		method:    http.MethodPut,
		target:    "/",
		body:      map[string]string{"status": "interview_scheduled", "recruiter_notes": "Mon 10am"},
		principal: as(f.recruiter),
		params:    map[string]string{paramID: appID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Application status updated successfully", decode(t, rec)["message"])
	assert.Equal(t, models.ApplicationInterviewScheduled, f.apps.apps[appID].Status)
	assert.Equal(t, "Mon 10am", *f.apps.apps[appID].RecruiterNotes)

	events := f.notifier.sent()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventApplicationStatus, events[1].Type)
	assert.Equal(t, f.candidate.Email, events[1].RecipientEmail)

	rec = serve(t, f.h.HandleListMyApplications, request{target: "/", principal: as(f.candidate)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])
}
