package routehandlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/auth"
	"github.com/jobportal/jobportal/models"
)

func newTestAuthHandler(users *fakeUsers) (*AuthHandler, *auth.TokenIssuer, *fakeRevocations) {
	tokens := auth.NewTokenIssuer("test-secret", "jobportal", 15*time.Minute, 24*time.Hour)
	revoked := &fakeRevocations{}
	return NewAuthHandler(users, tokens, revoked), tokens, revoked
}

func registerBody() map[string]any {
	return map[string]any{
		"firstName":       "Asha",
		"lastName":        "Kumari",
		"email":           "Asha@Example.com",
		"phone":           "+919876543210",
		"password":        "s3cure-pass",
		"confirmPassword": "s3cure-pass",
		"gender":          "female",
	}
}

func TestRegisterCreatesCandidate(t *testing.T) {
	users := newFakeUsers()
	h, tokens, _ := newTestAuthHandler(users)

	rec := serve(t, h.HandleRegister, request{method: http.MethodPost, target: "/api/auth/register", body: registerBody()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, "candidate", user["role"])

	stored, err := users.GetUserByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.NoError(t, auth.VerifyPassword(stored.PasswordHash, "s3cure-pass"))

	access := body["tokens"].(map[string]any)["access"].(string)
	claims, err := tokens.Parse(access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"password mismatch", func(b map[string]any) { b["confirmPassword"] = "other-pass" }, "confirmPassword"},
		{"numeric password", func(b map[string]any) { b["password"], b["confirmPassword"] = "12345678", "12345678" }, "password"},
		{"bad phone", func(b map[string]any) { b["phone"] = "12ab" }, "phone"},
		{"bad role", func(b map[string]any) { b["role"] = "superuser" }, "role"},
		{"admin role", func(b map[string]any) { b["role"] = "Admin" }, "role"},
		{"bad gender", func(b map[string]any) { b["gender"] = "x" }, "gender"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := newTestAuthHandler(newFakeUsers())
			body := registerBody()
			tc.edit(body)
			rec := serve(t, h.HandleRegister, request{method: http.MethodPost, target: "/", body: body})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["fields"], tc.field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := newTestAuthHandler(newFakeUsers(newCandidate("asha@example.com")))
	rec := serve(t, h.HandleRegister, request{method: http.MethodPost, target: "/", body: registerBody()})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecruiterRegister(t *testing.T) {
	users := newFakeUsers()
	h, _, _ := newTestAuthHandler(users)

	rec := serve(t, h.HandleRecruiterRegister, request{method: http.MethodPost, target: "/", body: map[string]any{
		"companyEmail": "hr@acme.io",
		"hrName":       "Priya",
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: phone, password, confirmPassword", decode(t, rec)["error"])

	rec = serve(t, h.HandleRecruiterRegister, request{method: http.MethodPost, target: "/", body: map[string]any{
		"companyEmail":    "hr@acme.io",
		"hrName":          "Priya",
		"phone":           "9876543210",
		"password":        "s3cure-pass",
		"confirmPassword": "s3cure-pass",
		"companyName":     "Acme",
		"hrRole":          "Talent Lead",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "pending", user["approval_status"])
	assert.Equal(t, false, user["profile_completed"])

	stored, err := users.GetUserByEmail(context.Background(), "hr@acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.RoleRecruiter, stored.Role)
	assert.Equal(t, "User", stored.LastName)
	require.NotNil(t, stored.Bio)
	assert.Equal(t, "Company: Acme, Role: Talent Lead", *stored.Bio)
	assert.False(t, stored.CanPostJobs())
}

func TestLogin(t *testing.T) {
	users := newFakeUsers()
	h, _, _ := newTestAuthHandler(users)
	rec := serve(t, h.HandleRegister, request{method: http.MethodPost, target: "/", body: registerBody()})
	require.Equal(t, http.StatusCreated, rec.Code)

	login := func(body map[string]any) (int, map[string]any) {
		rec := serve(t, h.HandleLogin, request{method: http.MethodPost, target: "/", body: body})
		return rec.Code, decode(t, rec)
	}

	code, body := login(map[string]any{"email": "asha@example.com", "password": "s3cure-pass"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "Asha Kumari", body["user"].(map[string]any)["name"])

	code, body = login(map[string]any{"email": "asha@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid credentials.", body["error"])

	code, body = login(map[string]any{"email": "asha@example.com", "password": "s3cure-pass", "role": "recruiter"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid credentials for recruiter login", body["error"])

	u, err := users.GetUserByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, users.UpdateProfile(context.Background(), u))
	code, body = login(map[string]any{"email": "asha@example.com", "password": "s3cure-pass"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User account is disabled.", body["error"])
}

func TestRefreshAndLogout(t *testing.T) {
	candidate := newCandidate("asha@example.com")
	h, tokens, revoked := newTestAuthHandler(newFakeUsers(candidate))
	pair, err := tokens.IssuePair(candidate)
	require.NoError(t, err)

	rec := serve(t, h.HandleRefresh, request{method: http.MethodPost, target: "/", body: map[string]string{"refresh": pair.Refresh}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["access"])

	rec = serve(t, h.HandleRefresh, request{method: http.MethodPost, target: "/", body: map[string]string{"refresh": pair.Access}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h.HandleLogout, request{
		method:    http.MethodPost,
		target:    "/",
		body:      map[string]string{"refresh_token": pair.Refresh},
		principal: as(candidate),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, revoked.hashes, 1)

	rec = serve(t, h.HandleRefresh, request{method: http.MethodPost, target: "/", body: map[string]string{"refresh": pair.Refresh}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is blacklisted", decode(t, rec)["error"])
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	a, b := newCandidate("a@example.com"), newCandidate("b@example.com")
	h, tokens, revoked := newTestAuthHandler(newFakeUsers(a, b))
	pair, err := tokens.IssuePair(b)
	require.NoError(t, err)

	rec := serve(t, h.HandleLogout, request{method: http.MethodPost, target: "/", body: map[string]string{"refresh": pair.Refresh}, principal: as(a)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, revoked.hashes)

	rec = serve(t, h.HandleLogout, request{method: http.MethodPost, target: "/", principal: as(a)})
	assert.Equal(t, http.StatusOK, rec.Code)
}
