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

type CollegeApplicationRepository struct {
	db *sql.DB
}

func NewCollegeApplicationRepository(db *sql.DB) *CollegeApplicationRepository {
	return &CollegeApplicationRepository{db: db}
}

const collegeColumns = `
	id, user_id, college_name, college_data, full_name, email, phone, date_of_birth, gender,
	address, city, state, pincode, qualification, percentage, course, branch, message,
	status, admin_notes, created_at, updated_at`

func scanCollegeApplication(row rowScanner) (*models.CollegeApplication, error) {
	var (
		c           models.CollegeApplication
		collegeData string
		gender      string
		status      string
		branch      sql.NullString
		message     sql.NullString
		notes       sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.CollegeName, &collegeData, &c.FullName, &c.Email, &c.Phone, &c.DateOfBirth, &gender,
		&c.Address, &c.City, &c.State, &c.Pincode, &c.Qualification, &c.Percentage, &c.Course, &branch, &message,
		&status, &notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CollegeData = []byte(collegeData)
	c.Gender = models.Gender(gender)
	c.Status = models.CollegeApplicationStatus(status)
	c.Branch = stringPtr(branch)
	c.Message = stringPtr(message)
	c.AdminNotes = stringPtr(notes)
	return &c, nil
}

// Create inserts an admission request. A repeat for the same user and college yields ErrDuplicate.
func (r *CollegeApplicationRepository) Create(ctx context.Context, c *models.CollegeApplication) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Status == "" {
		c.Status = models.CollegePending
	}
	data := string(c.CollegeData)
	if strings.TrimSpace(data) == "" {
		data = "{}"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO college_applications (`+collegeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		c.ID, c.UserID, c.CollegeName, data, c.FullName, c.Email, c.Phone, c.DateOfBirth, string(c.Gender),
		c.Address, c.City, c.State, c.Pincode, c.Qualification, c.Percentage, c.Course,
		nullStringPtr(c.Branch), nullStringPtr(c.Message), string(c.Status), nullStringPtr(c.AdminNotes),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application to %s: %w", c.CollegeName, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert college application: %w", err)
	}
	return nil
}

func (r *CollegeApplicationRepository) ListByUser(ctx context.Context, userID string) ([]models.CollegeApplication, error) {
	return r.list(ctx, `SELECT `+collegeColumns+` FROM college_applications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

type CollegeApplicationFilter struct {
	Status  string
	College string
}

func (r *CollegeApplicationRepository) List(ctx context.Context, f CollegeApplicationFilter) ([]models.CollegeApplication, error) {
	var b queryBuilder
	if f.Status != "" {
		b.add("status = ?", f.Status)
	}
	if col := strings.TrimSpace(f.College); col != "" {
		b.add("college_name ILIKE ?", likePattern(col))
	}
	return r.list(ctx, `SELECT `+collegeColumns+` FROM college_applications`+b.where()+` ORDER BY created_at DESC`, b.args...)
}

// GetByID fetches an application. A non-empty userID restricts the lookup to that owner.
func (r *CollegeApplicationRepository) GetByID(ctx context.Context, id, userID string) (*models.CollegeApplication, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid application ID format: %w", err)
	}
	var b queryBuilder
	b.add("id = ?", id)
	if userID != "" {
		b.add("user_id = ?", userID)
	}
	c, err := scanCollegeApplication(r.db.QueryRowContext(ctx,
		`SELECT `+collegeColumns+` FROM college_applications`+b.where(), b.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("college application not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get college application: %w", err)
	}
	return c, nil
}

func (r *CollegeApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.CollegeApplicationStatus, notes *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE college_applications
		SET status = $2, admin_notes = COALESCE($3, admin_notes), updated_at = $4
		WHERE id = $1
	`, id, string(status), nullStringPtr(notes), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update college application status: %w", err)
	}
	return expectOneRow(res, "college application")
}

func (r *CollegeApplicationRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid application ID format: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM college_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete college application: %w", err)
	}
	return expectOneRow(res, "college application")
}

func (r *CollegeApplicationRepository) list(ctx context.Context, query string, args ...any) ([]models.CollegeApplication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query college applications: %w", err)
	}
	defer rows.Close()

	apps := []models.CollegeApplication{}
	for rows.Next() {
		c, err := scanCollegeApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan college application row: %w", err)
		}
		apps = append(apps, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating college application rows: %w", err)
	}
	return apps, nil
}
