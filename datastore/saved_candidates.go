package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal/jobportal/models"
)

type SavedCandidateRepository struct {
	db *sql.DB
}

func NewSavedCandidateRepository(db *sql.DB) *SavedCandidateRepository {
	return &SavedCandidateRepository{db: db}
}

func (r *SavedCandidateRepository) Save(ctx context.Context, s *models.SavedCandidate) error {
	if _, err := uuid.Parse(s.CandidateID); err != nil {
		return fmt.Errorf("invalid candidate ID format: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.SavedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_candidates (id, recruiter_id, candidate_id, notes, saved_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.RecruiterID, s.CandidateID, nullStringPtr(s.Notes), s.SavedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate %s already saved: %w", s.CandidateID, ErrDuplicate)
		}
		return fmt.Errorf("failed to save candidate: %w", err)
	}
	return nil
}

// ListByRecruiter returns the recruiter's saved candidates with their user records.
func (r *SavedCandidateRepository) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.SavedCandidate, error) {
	query := `
		SELECT s.id, s.recruiter_id, s.candidate_id, s.notes, s.saved_at, ` + userColumns + `
		FROM saved_candidates s
		JOIN users u ON u.id = s.candidate_id
		WHERE s.recruiter_id = $1
		ORDER BY s.saved_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved candidates: %w", err)
	}
	defer rows.Close()

	saved := []models.SavedCandidate{}
	for rows.Next() {
		var (
			s     models.SavedCandidate
			notes sql.NullString
		)
		head := []any{&s.ID, &s.RecruiterID, &s.CandidateID, &notes, &s.SavedAt}
		user, err := scanUser(prefixedScanner{row: rows, head: head})
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved candidate row: %w", err)
		}
		s.Notes = stringPtr(notes)
		s.Candidate = user
		saved = append(saved, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved candidate rows: %w", err)
	}
	return saved, nil
}

// SavedIDs returns the set of candidate IDs the recruiter has saved.
func (r *SavedCandidateRepository) SavedIDs(ctx context.Context, recruiterID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT candidate_id FROM saved_candidates WHERE recruiter_id = $1`, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved candidate ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved candidate id: %w", err)
		}
		ids[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved candidate ids: %w", err)
	}
	return ids, nil
}

func (r *SavedCandidateRepository) UpdateNotes(ctx context.Context, recruiterID, candidateID string, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE saved_candidates SET notes = $3 WHERE recruiter_id = $1 AND candidate_id = $2`,
		recruiterID, candidateID, nullStringPtr(notes),
	)
	if err != nil {
		return fmt.Errorf("failed to update saved candidate notes: %w", err)
	}
	return expectOneRow(res, "saved candidate")
}

func (r *SavedCandidateRepository) Delete(ctx context.Context, recruiterID, candidateID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_candidates WHERE recruiter_id = $1 AND candidate_id = $2`,
		recruiterID, candidateID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved candidate: %w", err)
	}
	return expectOneRow(res, "saved candidate")
}

// prefixedScanner scans leading columns into head before handing the rest to the wrapped scan.
type prefixedScanner struct {
	row  rowScanner
	head []any
}

func (p prefixedScanner) Scan(dest ...any) error {
	return p.row.Scan(append(append([]any{}, p.head...), dest...)...)
}
