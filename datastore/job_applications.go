package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal/jobportal/models"
)

type JobApplicationRepository struct {
	db *sql.DB
}

func NewJobApplicationRepository(db *sql.DB) *JobApplicationRepository {
	return &JobApplicationRepository{db: db}
}

const applicationSelect = `
	SELECT a.id, a.job_id, a.candidate_id, a.status, a.cover_letter, a.recruiter_notes,
	       a.applied_at, a.updated_at,
	       j.job_title, j.location, j.recruiter_id, c.company_name,
	       cu.first_name, cu.last_name, cu.email, cu.phone,
	       ru.first_name, ru.last_name
	FROM job_applications a
	JOIN job_posts j ON j.id = a.job_id
	JOIN users cu ON cu.id = a.candidate_id
	JOIN users ru ON ru.id = j.recruiter_id
	LEFT JOIN recruiter_company_profiles c ON c.recruiter_id = j.recruiter_id`

func scanApplication(row rowScanner) (*models.JobApplication, error) {
	var (
		a                 models.JobApplication
		status            string
		coverLetter       sql.NullString
		notes             sql.NullString
		companyName       sql.NullString
		candFirst         string
		candLast          string
		recFirst, recLast string
	)
	err := row.Scan(
		&a.ID, &a.JobID, &a.CandidateID, &status, &coverLetter, &notes,
		&a.AppliedAt, &a.UpdatedAt,
		&a.JobTitle, &a.JobLocation, &a.RecruiterID, &companyName,
		&candFirst, &candLast, &a.CandidateEmail, &a.CandidatePhone,
		&recFirst, &recLast,
	)
	if err != nil {
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	a.CoverLetter = stringPtr(coverLetter)
	a.RecruiterNotes = stringPtr(notes)
	a.CandidateName = (&models.User{FirstName: candFirst, LastName: candLast}).FullName()
	if companyName.Valid && companyName.String != "" {
		a.CompanyName = companyName.String
	} else {
		a.CompanyName = models.CompanyFallbackName((&models.User{FirstName: recFirst, LastName: recLast}).FullName())
	}
	return &a, nil
}

// Create inserts an application. A second application for the same job and candidate yields ErrDuplicate.
func (r *JobApplicationRepository) Create(ctx context.Context, a *models.JobApplication) error {
	if _, err := uuid.Parse(a.JobID); err != nil {
		return fmt.Errorf("invalid job ID format: %w", err)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.AppliedAt, a.UpdatedAt = now, now
	if a.Status == "" {
		a.Status = models.ApplicationApplied
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_applications (id, job_id, candidate_id, status, cover_letter, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.JobID, a.CandidateID, string(a.Status), nullStringPtr(a.CoverLetter), a.AppliedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application for job %s: %w", a.JobID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert job application: %w", err)
	}
	return nil
}

// FindForCandidate returns the candidate's application to a job, or nil when none exists.
func (r *JobApplicationRepository) FindForCandidate(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx,
		applicationSelect+` WHERE a.job_id = $1 AND a.candidate_id = $2`, jobID, candidateID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up application: %w", err)
	}
	return a, nil
}

func (r *JobApplicationRepository) GetByID(ctx context.Context, id string) (*models.JobApplication, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid application ID format: %w", err)
	}
	a, err := scanApplication(r.db.QueryRowContext(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

func (r *JobApplicationRepository) ListByCandidate(ctx context.Context, candidateID string) ([]models.JobApplication, error) {
	return r.list(ctx, applicationSelect+` WHERE a.candidate_id = $1 ORDER BY a.applied_at DESC`, candidateID)
}

type ApplicationFilter struct {
	Status string
	JobID  string
}

// ListByRecruiter returns applications on jobs owned by recruiterID.
func (r *JobApplicationRepository) ListByRecruiter(ctx context.Context, recruiterID string, f ApplicationFilter) ([]models.JobApplication, error) {
	var b queryBuilder
	b.add("j.recruiter_id = ?", recruiterID)
	if f.Status != "" {
		b.add("a.status = ?", f.Status)
	}
	if f.JobID != "" {
		b.add("a.job_id = ?", f.JobID)
	}
	return r.list(ctx, applicationSelect+b.where()+` ORDER BY a.applied_at DESC`, b.args...)
}

func (r *JobApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, notes *string) error {
	query := `
		UPDATE job_applications
		SET status = $2, recruiter_notes = COALESCE($3, recruiter_notes), updated_at = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, string(status), nullStringPtr(notes), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return expectOneRow(res, "application")
}

// CountForRecruiter counts applications on the recruiter's jobs, optionally limited to one status.
func (r *JobApplicationRepository) CountForRecruiter(ctx context.Context, recruiterID string, status models.ApplicationStatus) (int, error) {
	var b queryBuilder
	b.add("j.recruiter_id = ?", recruiterID)
	if status != "" {
		b.add("a.status = ?", string(status))
	}
	var n int
	query := `SELECT COUNT(*) FROM job_applications a JOIN job_posts j ON j.id = a.job_id` + b.where()
	if err := r.db.QueryRowContext(ctx, query, b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

func (r *JobApplicationRepository) list(ctx context.Context, query string, args ...any) ([]models.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := []models.JobApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}
