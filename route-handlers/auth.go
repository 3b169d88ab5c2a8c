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

	"github.com/jobportal/jobportal/auth"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/webutil"
)

type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type TokenRevocations interface {
	Revoke(ctx context.Context, t models.RevokedToken) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

type AuthHandler struct {
	users   AccountStore
	tokens  *auth.TokenIssuer
	revoked TokenRevocations
}

func NewAuthHandler(users AccountStore, tokens *auth.TokenIssuer, revoked TokenRevocations) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, revoked: revoked}
}

type registerRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=30"`
	LastName        string `json:"lastName" validate:"required,max=30"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Gender          string `json:"gender"`
	Role            string `json:"role"`
}

type userSummary struct {
	ID               string                `json:"id"`
	Email            string                `json:"email"`
	FirstName        string                `json:"first_name"`
	LastName         string                `json:"last_name"`
	FullName         string                `json:"full_name"`
	Role             models.Role           `json:"role"`
	CompanyName      *string               `json:"company_name,omitempty"`
	HRRole           *string               `json:"hr_role,omitempty"`
	ApprovalStatus   models.ApprovalStatus `json:"approval_status,omitempty"`
	ProfileCompleted *bool                 `json:"profile_completed,omitempty"`
}

func summarize(u *models.User) userSummary {
	return userSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      u.Role,
	}
}

// newAccount validates a registration and returns the user ready to insert.
func newAccount(req registerRequest) (*models.User, error) {
	if err := webutil.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, webutil.FieldError("confirmPassword", "Passwords don't match.")
	}
	if err := auth.CheckPasswordPolicy(req.Password, req.Email); err != nil {
		return nil, webutil.FieldError("password", err.Error())
	}
	phone := strings.TrimSpace(req.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, webutil.FieldError("phone", "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed.")
	}

	role := models.RoleCandidate
	if req.Role != "" {
		r, ok := models.IsValidRole(req.Role)
		if !ok {
			return nil, webutil.FieldError("role", "Invalid role specified.")
		}
		if r == models.RoleAdmin {
			return nil, webutil.FieldError("role", "Admin accounts cannot be created through registration.")
		}
		role = r
	}

	user := &models.User{
		Email:     req.Email,
		Role:      role,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     phone,
		IsActive:  true,
		Approval:  models.ApprovalPending,
	}
	if req.Gender != "" {
		g, ok := models.IsValidGender(req.Gender)
		if !ok {
			return nil, webutil.FieldError("gender", fmt.Sprintf("%q is not a valid choice.", req.Gender))
		}
		user.Gender = &g
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

func (h *AuthHandler) createAccount(ctx context.Context, user *models.User) error {
	if err := h.users.CreateUser(ctx, user); err != nil {
		if isDuplicate(err) {
			return webutil.ErrConflict("A user with this email already exists.").WithField("email", "user with this email already exists.")
		}
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	user, err := newAccount(req)
	if err != nil {
		return err
	}
	if err := h.createAccount(r.Context(), user); err != nil {
		return err
	}
	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		return err
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", user.ID, "role", user.Role)
	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "registered",
		"user":    summarize(user),
		"tokens":  pair,
	})
	return nil
}

type recruiterRegisterRequest struct {
	CompanyEmail    string `json:"companyEmail"`
	HRName          string `json:"hrName"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	CompanyName     string `json:"companyName"`
	GSTCIN          string `json:"gstCin"`
	HRRole          string `json:"hrRole"`
}

func (req recruiterRegisterRequest) missingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"companyEmail", req.CompanyEmail},
		{"hrName", req.HRName},
		{"phone", req.Phone},
		{"password", req.Password},
		{"confirmPassword", req.ConfirmPassword},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// splitHRName uses the first word as the first name and the rest as the last
// name, defaulting the last name to "User".
func splitHRName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", "User"
	}
	if len(parts) == 1 {
		return parts[0], "User"
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func recruiterBio(company, hrRole, gstCIN string) string {
	var parts []string
	if company != "" {
		parts = append(parts, "Company: "+company)
	}
	if hrRole != "" {
		parts = append(parts, "Role: "+hrRole)
	}
	if gstCIN != "" {
		parts = append(parts, "GST/CIN: "+gstCIN)
	}
	if len(parts) == 0 {
		return "Recruiter"
	}
	return strings.Join(parts, ", ")
}

func (h *AuthHandler) HandleRecruiterRegister(w http.ResponseWriter, r *http.Request) error {
	var req recruiterRegisterRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if missing := req.missingFields(); len(missing) > 0 {
		fields := make(map[string]string, len(missing))
		for _, f := range missing {
			fields[f] = "This field is required."
		}
		httpErr := webutil.ErrValidation(fields)
		httpErr.Message = "Missing required fields: " + strings.Join(missing, ", ")
		return httpErr
	}

	first, last := splitHRName(req.HRName)
	user, err := newAccount(registerRequest{
		FirstName:       first,
		LastName:        last,
		Email:           strings.TrimSpace(req.CompanyEmail),
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            string(models.RoleRecruiter),
	})
	if err != nil {
		return err
	}
	company := strings.TrimSpace(req.CompanyName)
	hrRole := strings.TrimSpace(req.HRRole)
	bio := recruiterBio(company, hrRole, strings.TrimSpace(req.GSTCIN))
	user.Bio = &bio

	if err := h.createAccount(r.Context(), user); err != nil {
		return err
	}
	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		return err
	}

	summary := summarize(user)
	summary.CompanyName = &company
	summary.HRRole = &hrRole
	summary.ApprovalStatus = user.Approval
	summary.ProfileCompleted = &user.ProfileDone

	slog.InfoContext(r.Context(), "Recruiter registered", "user_id", user.ID)
	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "registered",
		"user":    summary,
		"tokens":  pair,
	})
	return nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if err := webutil.ValidateStruct(req); err != nil {
		return err
	}
	role := models.RoleCandidate
	if req.Role != "" {
		rl, ok := models.IsValidRole(req.Role)
		if !ok {
			return webutil.FieldError("role", "Invalid role specified.")
		}
		role = rl
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrBadRequest("Invalid credentials.")
		}
		return fmt.Errorf("failed to look up user for login: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return webutil.ErrBadRequest("Invalid credentials.")
	}
	if !user.IsActive {
		return webutil.ErrBadRequest("User account is disabled.")
	}
	if user.Role != role {
		return webutil.ErrBadRequest(fmt.Sprintf("Invalid credentials for %s login", role)).
			WithField("role", fmt.Sprintf("User is not registered as a %s", role))
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   pair.Access,
		"user": map[string]any{
			"id":         user.ID,
			"name":       user.FullName(),
			"email":      user.Email,
			"role":       user.Role,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
		},
		"tokens": pair,
	})
	return nil
}

type refreshRequest struct {
	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`
}

func (req refreshRequest) token() string {
	if req.Refresh != "" {
		return strings.TrimSpace(req.Refresh)
	}
	return strings.TrimSpace(req.RefreshToken)
}

// HandleRefresh exchanges a refresh token that has not been logged out for a new access token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req refreshRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	token := req.token()
	if token == "" {
		return webutil.FieldError("refresh", "This field is required.")
	}
	claims, err := h.tokens.Parse(token, auth.TokenRefresh)
	if err != nil {
		return webutil.ErrUnauthorizedWrap("Token is invalid or expired", err)
	}
	revoked, err := h.revoked.IsRevoked(r.Context(), webutil.HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return webutil.ErrUnauthorized("Token is blacklisted")
	}
	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return webutil.ErrUnauthorizedWrap("User not found", err)
	}
	if !user.IsActive {
		return webutil.ErrUnauthorized("User is inactive")
	}

	access, exp, err := h.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"access":            access,
		"access_expires_at": exp,
	})
	return nil
}

// HandleLogout revokes the supplied refresh token. A missing or unparsable
// token still logs out; the access token simply expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req refreshRequest
	if err := webutil.DecodeOptionalJSON(w, r, &req); err != nil {
		return err
	}

	if token := req.token(); token != "" {
		claims, err := h.tokens.Parse(token, auth.TokenRefresh)
		if err != nil {
			return webutil.ErrBadRequestWrap("Logout failed", err)
		}
		if claims.UserID != p.UserID {
			return webutil.ErrBadRequest("Logout failed")
		}
		rt := models.RevokedToken{
			TokenHash: webutil.HashToken(token),
			UserID:    p.UserID,
			ExpiresAt: claims.ExpiresAt.Time,
			RevokedAt: time.Now().UTC(),
		}
		if err := h.revoked.Revoke(r.Context(), rt); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
	})
	return nil
}
