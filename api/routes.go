package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobportal/jobportal/models"
	rh "github.com/jobportal/jobportal/route-handlers"
	"github.com/jobportal/jobportal/scheduler"
	"github.com/jobportal/jobportal/webutil"
)

const (
	apiBasePath        = "/api"
	authBasePath       = "/auth"
	recruiterBasePath  = "/recruiter"
	jobsBasePath       = "/jobs"
	admissionsBasePath = "/admissions"
	adminBasePath      = "/admin"
)

const (
	paramID          = "id"
	paramCandidateID = "candidateID"
)

const requestTimeout = 60 * time.Second

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth           *rh.AuthHandler
	Profile        *rh.ProfileHandler
	CompanyProfile *rh.CompanyProfileHandler
	Admin          *rh.AdminHandler
	Jobs           *rh.JobHandler
	Applications   *rh.ApplicationHandler
	Saved          *rh.SavedCandidateHandler
	Admissions     *rh.AdmissionHandler
	Scheduler      *scheduler.Scheduler
}

type Options struct {
	Authenticator  *Authenticator
	Limiter        Limiter
	AuthPerMinute  int
	ApplyPerMinute int
	AllowedOrigins []string
	TrustProxy     bool
}

func SetupRoutes(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	if opts.TrustProxy {
		r.Use(RealIP)
	}
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout(requestTimeout))
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))
	r.Use(CORS(opts.AllowedOrigins))

	r.Route(apiBasePath, func(r chi.Router) {
		configureAuthRoutes(r, h, opts)
		configureRecruiterRoutes(r, h, opts)
		configureJobRoutes(r, h, opts)
		configureAdmissionRoutes(r, h, opts)
		r.With(opts.Authenticator.Authenticate).
			Get("/resume-upload/info", webutil.MakeHandler(h.Profile.HandleResumeInfo))
	})

	r.Post("/scheduler/tick", webutil.MakeHandler(h.Scheduler.HandleTick))
	r.Get("/healthz", handleHealthCheck)

	return r
}

func pathWithParam(basePath string, paramName string) string {
	return basePath + "/{" + paramName + "}"
}

func perMinute(limiter Limiter, keyFn func(*http.Request) string, limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimit(limiter, keyFn, limit, time.Minute)
}

// --- Auth & profile routes ---
func configureAuthRoutes(r chi.Router, h Handlers, opts Options) {
	r.Route(authBasePath, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(perMinute(opts.Limiter, ipKey("auth"), opts.AuthPerMinute))
			r.Post("/register", webutil.MakeHandler(h.Auth.HandleRegister))
			r.Post("/recruiter-register", webutil.MakeHandler(h.Auth.HandleRecruiterRegister))
			r.Post("/login", webutil.MakeHandler(h.Auth.HandleLogin))
			r.Post("/refresh", webutil.MakeHandler(h.Auth.HandleRefresh))
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.Post("/logout", webutil.MakeHandler(h.Auth.HandleLogout))

			r.Get("/profile", webutil.MakeHandler(h.Profile.HandleGetProfile))
			r.Put("/profile", webutil.MakeHandler(h.Profile.HandleUpdateProfile))
			r.Put("/profile/update", webutil.MakeHandler(h.Profile.HandleUpdateProfile))
			r.Patch("/profile/update", webutil.MakeHandler(h.Profile.HandleUpdateProfile))
			r.Post("/profile/upload-resume", webutil.MakeHandler(h.Profile.HandleUploadResume))
			r.Get("/profile/stats", webutil.MakeHandler(h.Profile.HandleProfileStats))

			r.With(RequireRole(models.RoleRecruiter)).
				Get("/candidates", webutil.MakeHandler(h.Profile.HandleListCandidates))
			r.With(RequireRole(models.RoleCandidate)).
				Get("/my-applications", webutil.MakeHandler(h.Applications.HandleListMyApplications))
		})
	})
}

// --- Recruiter routes: company profile, jobs, applications, saved candidates, admin ---
func configureRecruiterRoutes(r chi.Router, h Handlers, opts Options) {
	r.Route(recruiterBasePath, func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(models.RoleRecruiter))

			getProfile := webutil.MakeHandler(h.CompanyProfile.HandleGetCompanyProfile)
			createProfile := webutil.MakeHandler(h.CompanyProfile.HandleCreateCompanyProfile)
			updateProfile := webutil.MakeHandler(h.CompanyProfile.HandleUpdateCompanyProfile)
			for _, path := range []string{"/company-profile", "/profile", "/update-company-profile"} {
				r.Get(path, getProfile)
				r.Post(path, createProfile)
				r.Put(path, updateProfile)
			}
			r.Post("/company-profile/upload-document", webutil.MakeHandler(h.CompanyProfile.HandleUploadDocument))
			r.Post("/company-profile/upload-photos", webutil.MakeHandler(h.CompanyProfile.HandleUploadPhotos))

			createJob := webutil.MakeHandler(h.Jobs.HandleCreateJob)
			r.Post(jobsBasePath+"/create", createJob)
			r.Post("/post-job", createJob)
			r.Get(jobsBasePath+"/my-jobs", webutil.MakeHandler(h.Jobs.HandleListMyJobs))
			r.Get(pathWithParam(jobsBasePath, paramID), webutil.MakeHandler(h.Jobs.HandleGetMyJob))
			r.Put(pathWithParam(jobsBasePath, paramID)+"/update", webutil.MakeHandler(h.Jobs.HandleUpdateJob))

			r.Get("/applications/recruiter", webutil.MakeHandler(h.Applications.HandleListRecruiterApplications))
			r.Put(pathWithParam("/applications", paramID)+"/update-status", webutil.MakeHandler(h.Applications.HandleUpdateStatus))

			r.Get("/candidates/search", webutil.MakeHandler(h.Saved.HandleSearch))
			r.Get("/candidates/saved", webutil.MakeHandler(h.Saved.HandleListSaved))
			r.Post("/candidates/saved", webutil.MakeHandler(h.Saved.HandleSave))
			r.Put(pathWithParam("/candidates/saved", paramCandidateID)+"/notes", webutil.MakeHandler(h.Saved.HandleUpdateNotes))
			r.Delete(pathWithParam("/candidates/saved", paramCandidateID), webutil.MakeHandler(h.Saved.HandleUnsave))
		})

		r.With(RequireRole(models.RoleCandidate)).
			Get("/applications/my-applications", webutil.MakeHandler(h.Applications.HandleListMyApplications))

		r.Route(adminBasePath, func(r chi.Router) {
			r.Use(RequireRole(models.RoleAdmin))
			r.Get("/company-profiles", webutil.MakeHandler(h.Admin.HandleListCompanyProfiles))
			r.Put(pathWithParam("/company-profiles", paramID)+"/verify", webutil.MakeHandler(h.Admin.HandleVerifyCompany))
			r.Get("/recruiters", webutil.MakeHandler(h.Admin.HandleListRecruiters))
			r.Get(pathWithParam("/recruiters", paramID), webutil.MakeHandler(h.Admin.HandleGetRecruiter))
			r.Put(pathWithParam("/recruiters", paramID)+"/approve", webutil.MakeHandler(h.Admin.HandleApproveRecruiter))
			r.Put(pathWithParam("/recruiters", paramID)+"/reject", webutil.MakeHandler(h.Admin.HandleRejectRecruiter))
		})
	})
}

// --- Public job routes and candidate applications ---
func configureJobRoutes(r chi.Router, h Handlers, opts Options) {
	r.Route(jobsBasePath, func(r chi.Router) {
		r.Get("/public", webutil.MakeHandler(h.Jobs.HandleListPublicJobs))
		r.With(opts.Authenticator.OptionalAuthenticate).
			Get(pathWithParam("", paramID), webutil.MakeHandler(h.Jobs.HandleGetPublicJob))

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticator.Authenticate)
			r.With(perMinute(opts.Limiter, principalKey("apply"), opts.ApplyPerMinute)).
				Post(pathWithParam("", paramID)+"/apply", webutil.MakeHandler(h.Applications.HandleApply))
			r.Get(pathWithParam("", paramID)+"/check-status", webutil.MakeHandler(h.Applications.HandleCheckStatus))
		})
	})
}

// --- College admission routes ---
func configureAdmissionRoutes(r chi.Router, h Handlers, opts Options) {
	r.Route(admissionsBasePath, func(r chi.Router) {
		r.Use(opts.Authenticator.Authenticate)

		r.Post("/apply", webutil.MakeHandler(h.Admissions.HandleApply))
		r.Get("/my-applications", webutil.MakeHandler(h.Admissions.HandleListMine))
		r.Get(pathWithParam("/applications", paramID), webutil.MakeHandler(h.Admissions.HandleGetMine))

		r.Route(adminBasePath+"/applications", func(r chi.Router) {
			r.Use(RequireRole(models.RoleAdmin))
			r.Get("/", webutil.MakeHandler(h.Admissions.HandleAdminList))
			r.Get(pathWithParam("", paramID), webutil.MakeHandler(h.Admissions.HandleAdminGet))
			r.Put(pathWithParam("", paramID)+"/update-status", webutil.MakeHandler(h.Admissions.HandleAdminUpdateStatus))
			r.Delete(pathWithParam("", paramID)+"/delete", webutil.MakeHandler(h.Admissions.HandleAdminDelete))
		})
	})
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
