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

type CompanyProfileRepository struct {
	db *sql.DB
}

func NewCompanyProfileRepository(db *sql.DB) *CompanyProfileRepository {
	return &CompanyProfileRepository{db: db}
}

const companyColumns = `
	c.id, c.recruiter_id, c.company_name, c.website, c.industry, c.company_size, c.founded_year,
	c.head_office_location, c.gst_cin, c.company_registration_document, c.verification_status,
	c.verification_notes, c.company_description, c.mission_and_culture, c.benefits_and_perks,
	c.office_address, c.work_mode, c.office_photos, c.created_at, c.updated_at`

func scanCompanyProfile(row rowScanner) (*models.RecruiterCompanyProfile, error) {
	var (
		p           models.RecruiterCompanyProfile
		website     sql.NullString
		founded     sql.NullInt64
		gstCIN      sql.NullString
		regDoc      sql.NullString
		notes       sql.NullString
		mission     sql.NullString
		benefits    sql.NullString
		photos      sql.NullString
		size        string
		workMode    string
		verifStatus string
	)
	err := row.Scan(
		&p.ID, &p.RecruiterID, &p.CompanyName, &website, &p.Industry, &size, &founded,
		&p.HeadOfficeLocation, &gstCIN, &regDoc, &verifStatus,
		&notes, &p.CompanyDescription, &mission, &benefits,
		&p.OfficeAddress, &workMode, &photos, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Website = stringPtr(website)
	p.CompanySize = models.CompanySize(size)
	p.FoundedYear = intPtr(founded)
	p.GSTCIN = stringPtr(gstCIN)
	p.RegistrationDoc = stringPtr(regDoc)
	p.VerificationStatus = models.VerificationStatus(verifStatus)
	p.VerificationNotes = stringPtr(notes)
	p.MissionAndCulture = stringPtr(mission)
	p.Benefits = models.SplitCommaList(benefits.String)
	p.WorkMode = models.CompanyWorkMode(workMode)
	p.OfficePhotos = models.DecodeJSONList(photos.String)
	return &p, nil
}

// Create inserts the profile and marks the owning recruiter's profile as completed.
// A second profile for the same recruiter yields ErrDuplicate.
func (r *CompanyProfileRepository) Create(ctx context.Context, p *models.RecruiterCompanyProfile) error {
	if _, err := uuid.Parse(p.RecruiterID); err != nil {
		return fmt.Errorf("invalid recruiter ID format: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.VerificationStatus == "" {
		p.VerificationStatus = models.VerificationPending
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recruiter_company_profiles (
				id, recruiter_id, company_name, website, industry, company_size, founded_year,
				head_office_location, gst_cin, company_registration_document, verification_status,
				verification_notes, company_description, mission_and_culture, benefits_and_perks,
				office_address, work_mode, office_photos, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`,
			p.ID, p.RecruiterID, p.CompanyName, nullStringPtr(p.Website), p.Industry, string(p.CompanySize),
			nullIntPtr(p.FoundedYear), p.HeadOfficeLocation, nullStringPtr(p.GSTCIN), nullStringPtr(p.RegistrationDoc),
			string(p.VerificationStatus), nullStringPtr(p.VerificationNotes), p.CompanyDescription,
			nullStringPtr(p.MissionAndCulture), NewNullString(models.JoinCommaList(p.Benefits)),
			p.OfficeAddress, string(p.WorkMode), NewNullString(models.EncodeJSONList(p.OfficePhotos)),
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("company profile for recruiter %s: %w", p.RecruiterID, ErrDuplicate)
			}
			return fmt.Errorf("failed to insert company profile: %w", err)
		}
		return markProfileCompleted(ctx, tx, p.RecruiterID, now)
	})
}

// Update rewrites the recruiter-editable fields. Verification fields are left untouched.
func (r *CompanyProfileRepository) Update(ctx context.Context, p *models.RecruiterCompanyProfile) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE recruiter_company_profiles SET
				company_name = $2, website = $3, industry = $4, company_size = $5, founded_year = $6,
				head_office_location = $7, gst_cin = $8, company_description = $9,
				mission_and_culture = $10, benefits_and_perks = $11, office_address = $12,
				work_mode = $13, updated_at = $14
			WHERE recruiter_id = $1
		`,
			p.RecruiterID, p.CompanyName, nullStringPtr(p.Website), p.Industry, string(p.CompanySize),
			nullIntPtr(p.FoundedYear), p.HeadOfficeLocation, nullStringPtr(p.GSTCIN), p.CompanyDescription,
			nullStringPtr(p.MissionAndCulture), NewNullString(models.JoinCommaList(p.Benefits)),
			p.OfficeAddress, string(p.WorkMode), now,
		)
		if err != nil {
			return fmt.Errorf("failed to update company profile: %w", err)
		}
		if err := expectOneRow(res, "company profile"); err != nil {
			return err
		}
		return markProfileCompleted(ctx, tx, p.RecruiterID, now)
	})
}

func markProfileCompleted(ctx context.Context, tx *sql.Tx, recruiterID string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET profile_completed = TRUE, updated_at = $2 WHERE id = $1`,
		recruiterID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to mark profile completed: %w", err)
	}
	return nil
}

func (r *CompanyProfileRepository) GetByRecruiterID(ctx context.Context, recruiterID string) (*models.RecruiterCompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM recruiter_company_profiles c WHERE c.recruiter_id = $1`
	p, err := scanCompanyProfile(r.db.QueryRowContext(ctx, query, recruiterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company profile not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get company profile by recruiter: %w", err)
	}
	return p, nil
}

func (r *CompanyProfileRepository) GetByID(ctx context.Context, id string) (*models.RecruiterCompanyProfile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid company profile ID format: %w", err)
	}
	query := `SELECT ` + companyColumns + ` FROM recruiter_company_profiles c WHERE c.id = $1`
	p, err := scanCompanyProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company profile not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return p, nil
}

type CompanyProfileFilter struct {
	Status string
	Search string
}

func (r *CompanyProfileRepository) List(ctx context.Context, f CompanyProfileFilter) ([]models.RecruiterCompanyProfile, error) {
	var b queryBuilder
	if f.Status != "" {
		b.add("c.verification_status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		b.add("(c.company_name ILIKE ? OR c.industry ILIKE ?)", p, p)
	}
	query := `SELECT ` + companyColumns + ` FROM recruiter_company_profiles c` + b.where() + ` ORDER BY c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query company profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.RecruiterCompanyProfile{}
	for rows.Next() {
		p, err := scanCompanyProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company profile rows: %w", err)
	}
	return profiles, nil
}

// UpdateVerification records an admin decision on a company profile.
func (r *CompanyProfileRepository) UpdateVerification(ctx context.Context, id string, status models.VerificationStatus, notes *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recruiter_company_profiles
		SET verification_status = $2, verification_notes = $3, updated_at = $4
		WHERE id = $1
	`, id, string(status), nullStringPtr(notes), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	return expectOneRow(res, "company profile")
}

func (r *CompanyProfileRepository) SetRegistrationDocument(ctx context.Context, recruiterID, path string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recruiter_company_profiles SET company_registration_document = $2, updated_at = $3
		WHERE recruiter_id = $1
	`, recruiterID, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set registration document: %w", err)
	}
	return expectOneRow(res, "company profile")
}

// AppendOfficePhotos adds photos to the stored list under a row lock so
// concurrent uploads do not overwrite each other. It returns the full list.
func (r *CompanyProfileRepository) AppendOfficePhotos(ctx context.Context, recruiterID string, photos []string) ([]string, error) {
	var all []string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var current sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT office_photos FROM recruiter_company_profiles WHERE recruiter_id = $1 FOR UPDATE`,
			recruiterID,
		).Scan(&current)
		if err != nil {
			return fmt.Errorf("failed to lock office photos: %w", err)
		}
		all = append(models.DecodeJSONList(current.String), photos...)
		_, err = tx.ExecContext(ctx, `
			UPDATE recruiter_company_profiles SET office_photos = $2, updated_at = $3
			WHERE recruiter_id = $1
		`, recruiterID, NewNullString(models.EncodeJSONList(all)), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to set office photos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
