package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal/jobportal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.id, u.email, u.password_hash, u.role, u.first_name, u.last_name, u.phone,
	u.date_of_birth, u.gender, u.address, u.city, u.state, u.pincode, u.bio, u.skills,
	u.experience, u.education, u.linkedin_url, u.github_url, u.portfolio_url,
	u.resume_file_name, u.resume_file_path, u.resume_uploaded_at,
	u.is_active, u.is_superuser, u.profile_completed, u.approval_status, u.approved_at,
	u.created_at, u.updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u            models.User
		dob          sql.NullTime
		gender       sql.NullString
		address      sql.NullString
		city         sql.NullString
		state        sql.NullString
		pincode      sql.NullString
		bio          sql.NullString
		skills       sql.NullString
		experience   sql.NullString
		education    sql.NullString
		linkedin     sql.NullString
		github       sql.NullString
		portfolio    sql.NullString
		resumeName   sql.NullString
		resumePath   sql.NullString
		resumeAt     sql.NullTime
		approvedAt   sql.NullTime
		role         string
		approvalStat string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName, &u.Phone,
		&dob, &gender, &address, &city, &state, &pincode, &bio, &skills,
		&experience, &education, &linkedin, &github, &portfolio,
		&resumeName, &resumePath, &resumeAt,
		&u.IsActive, &u.IsSuperuser, &u.ProfileDone, &approvalStat, &approvedAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Approval = models.ApprovalStatus(approvalStat)
	u.DateOfBirth = timePtr(dob)
	if gender.Valid {
		g := models.Gender(gender.String)
		u.Gender = &g
	}
	u.Address = stringPtr(address)
	u.City = stringPtr(city)
	u.State = stringPtr(state)
	u.Pincode = stringPtr(pincode)
	u.Bio = stringPtr(bio)
	u.Skills = stringPtr(skills)
	u.Experience = stringPtr(experience)
	u.Education = stringPtr(education)
	u.LinkedinURL = stringPtr(linkedin)
	u.GithubURL = stringPtr(github)
	u.PortfolioURL = stringPtr(portfolio)
	u.Resume = models.ResumeInfo{
		FileName:   stringPtr(resumeName),
		FilePath:   stringPtr(resumePath),
		UploadedAt: timePtr(resumeAt),
	}
	u.ApprovedAt = timePtr(approvedAt)
	return &u, nil
}

func genderArg(g *models.Gender) sql.NullString {
	if g == nil {
		return sql.NullString{}
	}
	return NewNullString(string(*g))
}

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	query := `
		INSERT INTO users (
			id, email, password_hash, role, first_name, last_name, phone,
			gender, bio, is_active, is_superuser, profile_completed, approval_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.FirstName, user.LastName, user.Phone,
		genderArg(user.Gender), nullStringPtr(user.Bio), user.IsActive, user.IsSuperuser, user.ProfileDone,
		string(user.Approval), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s already registered: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile writes the editable profile fields of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, phone = $4, date_of_birth = $5, gender = $6,
			address = $7, city = $8, state = $9, pincode = $10, bio = $11, skills = $12,
			experience = $13, education = $14, linkedin_url = $15, github_url = $16,
			portfolio_url = $17, updated_at = $18
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Phone, nullTimePtr(user.DateOfBirth), genderArg(user.Gender),
		nullStringPtr(user.Address), nullStringPtr(user.City), nullStringPtr(user.State), nullStringPtr(user.Pincode),
		nullStringPtr(user.Bio), nullStringPtr(user.Skills), nullStringPtr(user.Experience), nullStringPtr(user.Education),
		nullStringPtr(user.LinkedinURL), nullStringPtr(user.GithubURL), nullStringPtr(user.PortfolioURL),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return expectOneRow(res, "user")
}

func (r *UserRepository) UpdateResume(ctx context.Context, userID, fileName, filePath string, uploadedAt time.Time) error {
	query := `
		UPDATE users
		SET resume_file_name = $2, resume_file_path = $3, resume_uploaded_at = $4, updated_at = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, fileName, filePath, uploadedAt)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return expectOneRow(res, "user")
}

type CandidateFilter struct {
	Keyword  string
	Location string
}

// ListCandidates returns active candidates, newest first.
func (r *UserRepository) ListCandidates(ctx context.Context, f CandidateFilter) ([]models.User, error) {
	var b queryBuilder
	b.add("u.role = ?", string(models.RoleCandidate))
	b.add("u.is_active = ?", true)
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		p := likePattern(kw)
		b.add("(u.first_name ILIKE ? OR u.last_name ILIKE ? OR u.skills ILIKE ? OR u.experience ILIKE ?)", p, p, p, p)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		p := likePattern(loc)
		b.add("(u.city ILIKE ? OR u.state ILIKE ?)", p, p)
	}
	query := `SELECT ` + userColumns + ` FROM users u` + b.where() + ` ORDER BY u.created_at DESC`
	return r.queryUsers(ctx, query, b.args...)
}

type RecruiterFilter struct {
	Status           string
	ProfileCompleted *bool
	Search           string
}

func (r *UserRepository) ListRecruiters(ctx context.Context, f RecruiterFilter) ([]models.User, error) {
	var b queryBuilder
	b.add("u.role = ?", string(models.RoleRecruiter))
	if f.Status != "" {
		b.add("u.approval_status = ?", f.Status)
	}
	if f.ProfileCompleted != nil {
		b.add("u.profile_completed = ?", *f.ProfileCompleted)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		b.add("(u.email ILIKE ? OR u.first_name ILIKE ? OR u.last_name ILIKE ?)", p, p, p)
	}
	query := `SELECT ` + userColumns + ` FROM users u` + b.where() + ` ORDER BY u.created_at DESC`
	return r.queryUsers(ctx, query, b.args...)
}

func (r *UserRepository) CountCandidates(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE`, string(models.RoleCandidate),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}

// ApproveRecruiter marks the recruiter approved and verifies a still-pending company profile
// in the same transaction.
func (r *UserRepository) ApproveRecruiter(ctx context.Context, recruiterID string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET approval_status = $2, approved_at = $3, updated_at = $3
			WHERE id = $1 AND role = $4
		`, recruiterID, string(models.ApprovalApproved), at, string(models.RoleRecruiter))
		if err != nil {
			return fmt.Errorf("failed to approve recruiter: %w", err)
		}
		if err := expectOneRow(res, "recruiter"); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE recruiter_company_profiles SET verification_status = $2, updated_at = $3
			WHERE recruiter_id = $1 AND verification_status = $4
		`, recruiterID, string(models.VerificationVerified), at, string(models.VerificationPending))
		if err != nil {
			return fmt.Errorf("failed to verify company profile: %w", err)
		}
		return nil
	})
}

// RejectRecruiter marks the recruiter rejected and rejects the company profile with the reason as notes.
func (r *UserRepository) RejectRecruiter(ctx context.Context, recruiterID, reason string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET approval_status = $2, approved_at = NULL, updated_at = $3
			WHERE id = $1 AND role = $4
		`, recruiterID, string(models.ApprovalRejected), at, string(models.RoleRecruiter))
		if err != nil {
			return fmt.Errorf("failed to reject recruiter: %w", err)
		}
		if err := expectOneRow(res, "recruiter"); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE recruiter_company_profiles
			SET verification_status = $2, verification_notes = $3, updated_at = $4
			WHERE recruiter_id = $1
		`, recruiterID, string(models.VerificationRejected), NewNullString(reason), at)
		if err != nil {
			return fmt.Errorf("failed to reject company profile: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
