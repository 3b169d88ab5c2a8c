package routehandlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/notify"
	"github.com/jobportal/jobportal/storage"
	"github.com/jobportal/jobportal/webutil"
)

func notFound(entity string) error {
	return fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, datastore.ErrDuplicate)
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return notFound("user")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateResume(ctx context.Context, userID, fileName, filePath string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return notFound("user")
	}
	u.Resume = models.ResumeInfo{FileName: &fileName, FilePath: &filePath, UploadedAt: &at}
	return nil
}

func (f *fakeUsers) sorted(keep func(*models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range f.users {
		if keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (f *fakeUsers) ListCandidates(ctx context.Context, flt datastore.CandidateFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kw := strings.ToLower(flt.Keyword)
	return f.sorted(func(u *models.User) bool {
		if u.Role != models.RoleCandidate || !u.IsActive {
			return false
		}
		if kw == "" {
			return true
		}
		hay := strings.ToLower(u.FirstName + " " + u.LastName)
		if u.Skills != nil {
			hay += " " + strings.ToLower(*u.Skills)
		}
		return strings.Contains(hay, kw)
	}), nil
}

func (f *fakeUsers) ListRecruiters(ctx context.Context, flt datastore.RecruiterFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(u *models.User) bool {
		if u.Role != models.RoleRecruiter {
			return false
		}
		if flt.Status != "" && string(u.Approval) != flt.Status {
			return false
		}
		return flt.ProfileCompleted == nil || *flt.ProfileCompleted == u.ProfileDone
	}), nil
}

func (f *fakeUsers) CountCandidates(ctx context.Context) (int, error) {
	list, _ := f.ListCandidates(ctx, datastore.CandidateFilter{})
	return len(list), nil
}

func (f *fakeUsers) ApproveRecruiter(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return notFound("recruiter")
	}
	u.Approval, u.ApprovedAt = models.ApprovalApproved, &at
	return nil
}

func (f *fakeUsers) RejectRecruiter(ctx context.Context, id, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return notFound("recruiter")
	}
	u.Approval, u.ApprovedAt = models.ApprovalRejected, nil
	return nil
}

type fakeRevocations struct {
	mu     sync.Mutex
	hashes map[string]models.RevokedToken
}

func (f *fakeRevocations) Revoke(ctx context.Context, t models.RevokedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes == nil {
		f.hashes = map[string]models.RevokedToken{}
	}
	f.hashes[t.TokenHash] = t
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.hashes[hash]
	return ok, nil
}

type fakeCompanies struct {
	mu       sync.Mutex
	profiles map[string]*models.RecruiterCompanyProfile // by recruiter id
	users    *fakeUsers
}

func newFakeCompanies(users *fakeUsers) *fakeCompanies {
	return &fakeCompanies{profiles: map[string]*models.RecruiterCompanyProfile{}, users: users}
}

func (f *fakeCompanies) put(p *models.RecruiterCompanyProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.profiles[p.RecruiterID] = p
}

func (f *fakeCompanies) markDone(recruiterID string) {
	if f.users == nil {
		return
	}
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	if u, ok := f.users.users[recruiterID]; ok {
		u.ProfileDone = true
	}
}

func (f *fakeCompanies) Create(ctx context.Context, p *models.RecruiterCompanyProfile) error {
	f.mu.Lock()
	if _, ok := f.profiles[p.RecruiterID]; ok {
		f.mu.Unlock()
		return fmt.Errorf("company profile: %w", datastore.ErrDuplicate)
	}
	p.ID = uuid.NewString()
	p.VerificationStatus = models.VerificationPending
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.profiles[p.RecruiterID] = &cp
	f.mu.Unlock()
	f.markDone(p.RecruiterID)
	return nil
}

func (f *fakeCompanies) Update(ctx context.Context, p *models.RecruiterCompanyProfile) error {
	f.mu.Lock()
	if _, ok := f.profiles[p.RecruiterID]; !ok {
		f.mu.Unlock()
		return notFound("company profile")
	}
	cp := *p
	f.profiles[p.RecruiterID] = &cp
	f.mu.Unlock()
	f.markDone(p.RecruiterID)
	return nil
}

func (f *fakeCompanies) GetByRecruiterID(ctx context.Context, recruiterID string) (*models.RecruiterCompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[recruiterID]
	if !ok {
		return nil, notFound("company profile")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCompanies) GetByID(ctx context.Context, id string) (*models.RecruiterCompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("company profile")
}

func (f *fakeCompanies) List(ctx context.Context, flt datastore.CompanyProfileFilter) ([]models.RecruiterCompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.RecruiterCompanyProfile{}
	for _, p := range f.profiles {
		if flt.Status != "" && string(p.VerificationStatus) != flt.Status {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(p.CompanyName), strings.ToLower(flt.Search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCompanies) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			p.VerificationStatus, p.VerificationNotes = status, notes
			return nil
		}
	}
	return notFound("company profile")
}

func (f *fakeCompanies) SetRegistrationDocument(ctx context.Context, recruiterID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[recruiterID]
	if !ok {
		return notFound("company profile")
	}
	p.RegistrationDoc = &path
	return nil
}

func (f *fakeCompanies) AppendOfficePhotos(ctx context.Context, recruiterID string, photos []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[recruiterID]
	if !ok {
		return nil, notFound("company profile")
	}
	p.OfficePhotos = append(append([]string{}, p.OfficePhotos...), photos...)
	return p.OfficePhotos, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.JobPost
}

func newFakeJobs(jobs ...*models.JobPost) *fakeJobs {
	f := &fakeJobs{jobs: map[string]*models.JobPost{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(ctx context.Context, j *models.JobPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j.ID = uuid.NewString()
	j.CreatedAt = time.Now().UTC()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeJobs) Update(ctx context.Context, j *models.JobPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.jobs[j.ID]
	if !ok || existing.RecruiterID != j.RecruiterID {
		return notFound("job post")
	}
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeJobs) get(keep func(*models.JobPost) bool) (*models.JobPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if keep(j) {
			cp := *j
			return &cp, nil
		}
	}
	return nil, notFound("job post")
}

func (f *fakeJobs) GetForRecruiter(ctx context.Context, jobID, recruiterID string) (*models.JobPost, error) {
	return f.get(func(j *models.JobPost) bool { return j.ID == jobID && j.RecruiterID == recruiterID })
}

func (f *fakeJobs) GetPublished(ctx context.Context, jobID string) (*models.JobPost, error) {
	return f.get(func(j *models.JobPost) bool { return j.ID == jobID && j.IsPublished })
}

func (f *fakeJobs) list(keep func(*models.JobPost) bool) []models.JobPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.JobPost{}
	for _, j := range f.jobs {
		if keep(j) {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (f *fakeJobs) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.JobPost, error) {
	return f.list(func(j *models.JobPost) bool { return j.RecruiterID == recruiterID }), nil
}

func (f *fakeJobs) ListPublished(ctx context.Context, flt datastore.JobFilter) ([]models.JobPost, error) {
	return f.list(func(j *models.JobPost) bool {
		return j.IsPublished &&
			(flt.JobType == "" || string(j.JobType) == flt.JobType) &&
			(flt.WorkMode == "" || string(j.WorkMode) == flt.WorkMode) &&
			(flt.Location == "" || strings.Contains(strings.ToLower(j.Location), strings.ToLower(flt.Location)))
	}), nil
}

func (f *fakeJobs) CountPublishedByRecruiter(ctx context.Context, recruiterID string) (int, error) {
	return len(f.list(func(j *models.JobPost) bool { return j.RecruiterID == recruiterID && j.IsPublished })), nil
}

type fakeApplications struct {
	mu   sync.Mutex
	apps map[string]*models.JobApplication
	jobs *fakeJobs
}

func newFakeApplications(jobs *fakeJobs) *fakeApplications {
	return &fakeApplications{apps: map[string]*models.JobApplication{}, jobs: jobs}
}

func (f *fakeApplications) Create(ctx context.Context, a *models.JobApplication) error {
	job, err := f.jobs.get(func(j *models.JobPost) bool { return j.ID == a.JobID })
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return fmt.Errorf("application: %w", datastore.ErrDuplicate)
		}
	}
	a.ID = uuid.NewString()
	a.AppliedAt = time.Now().UTC()
	a.UpdatedAt = a.AppliedAt
	a.RecruiterID = job.RecruiterID
	a.JobTitle = job.JobTitle
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeApplications) FindForCandidate(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.JobID == jobID && a.CandidateID == candidateID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApplications) GetByID(ctx context.Context, id string) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, notFound("application")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) filter(keep func(*models.JobApplication) bool) []models.JobApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.JobApplication{}
	for _, a := range f.apps {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakeApplications) ListByCandidate(ctx context.Context, candidateID string) ([]models.JobApplication, error) {
	return f.filter(func(a *models.JobApplication) bool { return a.CandidateID == candidateID }), nil
}

func (f *fakeApplications) ListByRecruiter(ctx context.Context, recruiterID string, flt datastore.ApplicationFilter) ([]models.JobApplication, error) {
	return f.filter(func(a *models.JobApplication) bool {
		return a.RecruiterID == recruiterID &&
			(flt.Status == "" || string(a.Status) == flt.Status) &&
			(flt.JobID == "" || a.JobID == flt.JobID)
	}), nil
}

func (f *fakeApplications) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return notFound("application")
	}
	a.Status, a.RecruiterNotes = status, notes
	return nil
}

func (f *fakeApplications) CountForRecruiter(ctx context.Context, recruiterID string, status models.ApplicationStatus) (int, error) {
	list, _ := f.ListByRecruiter(ctx, recruiterID, datastore.ApplicationFilter{Status: string(status)})
	return len(list), nil
}

type fakeSaved struct {
	mu    sync.Mutex
	saved []*models.SavedCandidate
	users *fakeUsers
}

func (f *fakeSaved) find(recruiterID, candidateID string) int {
	for i, s := range f.saved {
		if s.RecruiterID == recruiterID && s.CandidateID == candidateID {
			return i
		}
	}
	return -1
}

func (f *fakeSaved) Save(ctx context.Context, s *models.SavedCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.find(s.RecruiterID, s.CandidateID) >= 0 {
		return fmt.Errorf("saved candidate: %w", datastore.ErrDuplicate)
	}
	s.ID = uuid.NewString()
	s.SavedAt = time.Now().UTC()
	cp := *s
	f.saved = append(f.saved, &cp)
	return nil
}

func (f *fakeSaved) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.SavedCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SavedCandidate{}
	for _, s := range f.saved {
		if s.RecruiterID != recruiterID {
			continue
		}
		cp := *s
		if u, err := f.users.GetUserByID(ctx, s.CandidateID); err == nil {
			cp.Candidate = u
		}
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeSaved) SavedIDs(ctx context.Context, recruiterID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := map[string]bool{}
	for _, s := range f.saved {
		if s.RecruiterID == recruiterID {
			ids[s.CandidateID] = true
		}
	}
	return ids, nil
}

func (f *fakeSaved) UpdateNotes(ctx context.Context, recruiterID, candidateID string, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(recruiterID, candidateID)
	if i < 0 {
		return notFound("saved candidate")
	}
	f.saved[i].Notes = notes
	return nil
}

func (f *fakeSaved) Delete(ctx context.Context, recruiterID, candidateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(recruiterID, candidateID)
	if i < 0 {
		return notFound("saved candidate")
	}
	f.saved = append(f.saved[:i], f.saved[i+1:]...)
	return nil
}

type fakeColleges struct {
	mu   sync.Mutex
	apps map[string]*models.CollegeApplication
}

func newFakeColleges() *fakeColleges {
	return &fakeColleges{apps: map[string]*models.CollegeApplication{}}
}

func (f *fakeColleges) Create(ctx context.Context, c *models.CollegeApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.UserID == c.UserID && existing.CollegeName == c.CollegeName {
			return fmt.Errorf("college application: %w", datastore.ErrDuplicate)
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	cp := *c
	f.apps[c.ID] = &cp
	return nil
}

func (f *fakeColleges) filter(keep func(*models.CollegeApplication) bool) []models.CollegeApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CollegeApplication{}
	for _, c := range f.apps {
		if keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (f *fakeColleges) ListByUser(ctx context.Context, userID string) ([]models.CollegeApplication, error) {
	return f.filter(func(c *models.CollegeApplication) bool { return c.UserID == userID }), nil
}

func (f *fakeColleges) List(ctx context.Context, flt datastore.CollegeApplicationFilter) ([]models.CollegeApplication, error) {
	return f.filter(func(c *models.CollegeApplication) bool {
		return (flt.Status == "" || string(c.Status) == flt.Status) &&
			(flt.College == "" || strings.Contains(strings.ToLower(c.CollegeName), strings.ToLower(flt.College)))
	}), nil
}

func (f *fakeColleges) GetByID(ctx context.Context, id, userID string) (*models.CollegeApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.apps[id]
	if !ok || (userID != "" && c.UserID != userID) {
		return nil, notFound("college application")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeColleges) UpdateStatus(ctx context.Context, id string, status models.CollegeApplicationStatus, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.apps[id]
	if !ok {
		return notFound("college application")
	}
	c.Status, c.AdminNotes = status, notes
	return nil
}

func (f *fakeColleges) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.apps[id]; !ok {
		return notFound("college application")
	}
	delete(f.apps, id)
	return nil
}

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Notify(ctx context.Context, ev notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureNotifier) sent() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Event(nil), c.events...)
}

// fakeFiles records stored uploads and rejects anything policy.Extensions does not list.
type fakeFiles struct {
	stored []string
}

func (f *fakeFiles) Store(ownerID, name string, content io.Reader, policy storage.UploadPolicy) (string, error) {
	if _, err := storage.CheckExtension(name, policy); err != nil {
		return "", err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", storage.ErrEmptyFile
	}
	path := policy.Category + "/" + ownerID + "/" + name
	f.stored = append(f.stored, path)
	return path, nil
}

// request describes one handler invocation in tests.
type request struct {
	method    string
	target    string
	body      any
	principal *webutil.Principal
	params    map[string]string
	header    http.Header
}

func serve(t *testing.T, h webutil.AppHandler, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	method := req.method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.target, body)
	for k, vals := range req.header {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}

	rctx := chi.NewRouteContext()
	for k, v := range req.params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if req.principal != nil {
		ctx = webutil.WithPrincipal(ctx, *req.principal)
	}

	rec := httptest.NewRecorder()
	webutil.MakeHandler(h)(rec, r.WithContext(ctx))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func as(u *models.User) *webutil.Principal {
	return &webutil.Principal{UserID: u.ID, Role: u.Role}
}

func newCandidate(email string) *models.User {
	return &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      models.RoleCandidate,
		FirstName: "Asha",
		LastName:  "Kumari",
		Phone:     "9876543210",
		IsActive:  true,
		Approval:  models.ApprovalPending,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newRecruiter(email string, approved, profileDone bool) *models.User {
	u := &models.User{
		ID:          uuid.NewString(),
		Email:       email,
		Role:        models.RoleRecruiter,
		FirstName:   "Ravi",
		LastName:    "Shah",
		Phone:       "9876543211",
		IsActive:    true,
		ProfileDone: profileDone,
		Approval:    models.ApprovalPending,
		CreatedAt:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if approved {
		u.Approval = models.ApprovalApproved
	}
	return u
}

func newAdmin() *models.User {
	return &models.User{ID: uuid.NewString(), Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
}
