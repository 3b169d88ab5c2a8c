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

type JobPostRepository struct {
	db *sql.DB
}

func NewJobPostRepository(db *sql.DB) *JobPostRepository {
	return &JobPostRepository{db: db}
}

// jobSelect joins the owning recruiter and company so listings carry a display name.
const jobSelect = `
	SELECT j.id, j.recruiter_id, j.job_title, j.department, j.job_type, j.work_mode,
	       j.experience_level, j.location, j.min_salary, j.max_salary, j.currency, j.salary_period,
	       j.job_description, j.key_responsibilities, j.benefits_and_perks, j.requirements,
	       j.required_skills, j.application_deadline, j.apply_method, j.is_featured, j.is_published,
	       j.created_at, j.updated_at,
	       c.company_name, u.first_name, u.last_name,
	       (SELECT COUNT(*) FROM job_applications a WHERE a.job_id = j.id)
	FROM job_posts j
	JOIN users u ON u.id = j.recruiter_id
	LEFT JOIN recruiter_company_profiles c ON c.recruiter_id = j.recruiter_id`

func scanJobPost(row rowScanner) (*models.JobPost, error) {
	var (
		j                models.JobPost
		department       sql.NullString
		minSalary        sql.NullInt64
		maxSalary        sql.NullInt64
		responsibilities sql.NullString
		benefits         sql.NullString
		requirements     sql.NullString
		skills           sql.NullString
		deadline         sql.NullTime
		companyName      sql.NullString
		firstName        string
		lastName         string
		jobType          string
		workMode         string
		applyMethod      string
	)
	err := row.Scan(
		&j.ID, &j.RecruiterID, &j.JobTitle, &department, &jobType, &workMode,
		&j.ExperienceLevel, &j.Location, &minSalary, &maxSalary, &j.Currency, &j.SalaryPeriod,
		&j.JobDescription, &responsibilities, &benefits, &requirements,
		&skills, &deadline, &applyMethod, &j.IsFeatured, &j.IsPublished,
		&j.CreatedAt, &j.UpdatedAt,
		&companyName, &firstName, &lastName,
		&j.ApplicationCount,
	)
	if err != nil {
		return nil, err
	}
	j.Department = stringPtr(department)
	j.JobType = models.JobType(jobType)
	j.WorkMode = models.JobWorkMode(workMode)
	j.MinSalary = intPtr(minSalary)
	j.MaxSalary = intPtr(maxSalary)
	j.KeyResponsibilities = models.DecodeJSONList(responsibilities.String)
	j.BenefitsAndPerks = models.DecodeJSONList(benefits.String)
	j.Requirements = models.DecodeJSONList(requirements.String)
	j.RequiredSkills = models.DecodeJSONList(skills.String)
	j.ApplicationDeadline = timePtr(deadline)
	j.ApplyMethod = models.ApplyMethod(applyMethod)
	if companyName.Valid && companyName.String != "" {
		j.CompanyName = companyName.String
	} else {
		j.CompanyName = models.CompanyFallbackName(strings.TrimSpace(firstName + " " + lastName))
	}
	return &j, nil
}

func jobArgs(j *models.JobPost) []any {
	return []any{
		j.ID, j.RecruiterID, j.JobTitle, nullStringPtr(j.Department), string(j.JobType), string(j.WorkMode),
		j.ExperienceLevel, j.Location, nullIntPtr(j.MinSalary), nullIntPtr(j.MaxSalary), j.Currency, j.SalaryPeriod,
		j.JobDescription,
		NewNullString(models.EncodeJSONList(j.KeyResponsibilities)),
		NewNullString(models.EncodeJSONList(j.BenefitsAndPerks)),
		NewNullString(models.EncodeJSONList(j.Requirements)),
		NewNullString(models.EncodeJSONList(j.RequiredSkills)),
		nullTimePtr(j.ApplicationDeadline), string(j.ApplyMethod), j.IsFeatured, j.IsPublished,
		j.CreatedAt, j.UpdatedAt,
	}
}

func (r *JobPostRepository) Create(ctx context.Context, j *models.JobPost) error {
	if _, err := uuid.Parse(j.RecruiterID); err != nil {
		return fmt.Errorf("invalid recruiter ID format: %w", err)
	}
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now

	query := `
		INSERT INTO job_posts (
			id, recruiter_id, job_title, department, job_type, work_mode,
			experience_level, location, min_salary, max_salary, currency, salary_period,
			job_description, key_responsibilities, benefits_and_perks, requirements,
			required_skills, application_deadline, apply_method, is_featured, is_published,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	if _, err := r.db.ExecContext(ctx, query, jobArgs(j)...); err != nil {
		return fmt.Errorf("failed to insert job post: %w", err)
	}
	return nil
}

// Update rewrites a job post. Only the owning recruiter's row matches.
func (r *JobPostRepository) Update(ctx context.Context, j *models.JobPost) error {
	j.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE job_posts SET
			job_title = $3, department = $4, job_type = $5, work_mode = $6,
			experience_level = $7, location = $8, min_salary = $9, max_salary = $10, currency = $11,
			salary_period = $12, job_description = $13, key_responsibilities = $14,
			benefits_and_perks = $15, requirements = $16, required_skills = $17,
			application_deadline = $18, apply_method = $19, is_featured = $20, is_published = $21,
			updated_at = $22
		WHERE id = $1 AND recruiter_id = $2
	`
	args := jobArgs(j)
	// Drop created_at; it is never rewritten.
	args = append(args[:21], j.UpdatedAt)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job post: %w", err)
	}
	return expectOneRow(res, "job post")
}

func (r *JobPostRepository) getOne(ctx context.Context, cond string, args ...any) (*models.JobPost, error) {
	j, err := scanJobPost(r.db.QueryRowContext(ctx, jobSelect+` WHERE `+cond, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job post not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get job post: %w", err)
	}
	return j, nil
}

// GetForRecruiter returns a job only when it belongs to recruiterID.
func (r *JobPostRepository) GetForRecruiter(ctx context.Context, jobID, recruiterID string) (*models.JobPost, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("invalid job ID format: %w", err)
	}
	return r.getOne(ctx, `j.id = $1 AND j.recruiter_id = $2`, jobID, recruiterID)
}

// GetPublished returns a job only when it is published.
func (r *JobPostRepository) GetPublished(ctx context.Context, jobID string) (*models.JobPost, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("invalid job ID format: %w", err)
	}
	return r.getOne(ctx, `j.id = $1 AND j.is_published = TRUE`, jobID)
}

func (r *JobPostRepository) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.JobPost, error) {
	return r.list(ctx, jobSelect+` WHERE j.recruiter_id = $1 ORDER BY j.created_at DESC`, recruiterID)
}

type JobFilter struct {
	JobType  string
	WorkMode string
	Location string
}

// ListPublished returns published jobs, newest first.
func (r *JobPostRepository) ListPublished(ctx context.Context, f JobFilter) ([]models.JobPost, error) {
	var b queryBuilder
	b.add("j.is_published = ?", true)
	if f.JobType != "" {
		b.add("j.job_type = ?", f.JobType)
	}
	if f.WorkMode != "" {
		b.add("j.work_mode = ?", f.WorkMode)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		b.add("j.location ILIKE ?", likePattern(loc))
	}
	return r.list(ctx, jobSelect+b.where()+` ORDER BY j.created_at DESC`, b.args...)
}

func (r *JobPostRepository) CountPublishedByRecruiter(ctx context.Context, recruiterID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_posts WHERE recruiter_id = $1 AND is_published = TRUE`, recruiterID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return n, nil
}

// UnpublishExpired hides published jobs whose deadline is before the day of now.
func (r *JobPostRepository) UnpublishExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE job_posts SET is_published = FALSE, updated_at = $1
		WHERE is_published = TRUE AND application_deadline IS NOT NULL AND application_deadline < $1::date
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to unpublish expired jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (r *JobPostRepository) list(ctx context.Context, query string, args ...any) ([]models.JobPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job posts: %w", err)
	}
	defer rows.Close()

	jobs := []models.JobPost{}
	for rows.Next() {
		j, err := scanJobPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job post row: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job post rows: %w", err)
	}
	return jobs, nil
}
