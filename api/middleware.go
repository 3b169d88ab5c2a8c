package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jobportal/jobportal/auth"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/webutil"
)

func RequestID(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}

func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}

func Logger(next http.Handler) http.Handler {
	return middleware.Logger(next)
}

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows the browser client to call the API with bearer tokens.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", webutil.HeaderAuthorization, webutil.HeaderContentType, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

type TokenParser interface {
	Parse(token string, want auth.TokenType) (*auth.Claims, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Authenticator turns a bearer access token into a webutil.Principal.
// The role comes from the stored user, so role changes apply to tokens
// already issued.
type Authenticator struct {
	tokens TokenParser
	users  UserLookup
}

func NewAuthenticator(tokens TokenParser, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.principal(r)
		if err != nil {
			webutil.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(webutil.WithPrincipal(r.Context(), p)))
	})
}

// OptionalAuthenticate attaches a principal when a valid token is present and
// otherwise serves the request anonymously.
func (a *Authenticator) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := webutil.BearerToken(r); ok {
			if p, err := a.principal(r); err == nil {
				r = r.WithContext(webutil.WithPrincipal(r.Context(), p))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) principal(r *http.Request) (webutil.Principal, error) {
	token, ok := webutil.BearerToken(r)
	if !ok {
		return webutil.Principal{}, webutil.ErrUnauthorized("")
	}
	claims, err := a.tokens.Parse(token, auth.TokenAccess)
	if err != nil {
		return webutil.Principal{}, webutil.ErrUnauthorizedWrap("Given token not valid for any token type", err)
	}
	user, err := a.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return webutil.Principal{}, webutil.ErrUnauthorizedWrap("User not found", err)
	}
	if !user.IsActive {
		return webutil.Principal{}, webutil.ErrUnauthorized("User is inactive")
	}
	return webutil.Principal{UserID: user.ID, Role: user.Role, Admin: user.IsAdmin()}, nil
}

// RequireRole rejects callers whose role is not listed. Must run after Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := webutil.RequirePrincipal(r.Context())
			if err != nil {
				webutil.WriteError(w, r, err)
				return
			}
			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			webutil.WriteError(w, r, webutil.ErrForbidden(roleMessage(roles)))
		})
	}
}

func roleMessage(roles []models.Role) string {
	if len(roles) == 1 {
		switch roles[0] {
		case models.RoleRecruiter:
			return "Only recruiters can access this resource"
		case models.RoleCandidate:
			return "Only candidates can access this resource"
		case models.RoleAdmin:
			return "Admin access required"
		}
	}
	return ""
}

// Timeout is chi's request timeout, skipped for multipart uploads which may be slow.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	timeout := middleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		withTimeout := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}
			withTimeout.ServeHTTP(w, r)
		})
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(webutil.HeaderContentType), "multipart/")
}
