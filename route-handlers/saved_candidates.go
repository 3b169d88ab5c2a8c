package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/models"
	"github.com/jobportal/jobportal/webutil"
)

type SavedCandidateStore interface {
	Save(ctx context.Context, s *models.SavedCandidate) error
	ListByRecruiter(ctx context.Context, recruiterID string) ([]models.SavedCandidate, error)
	SavedIDs(ctx context.Context, recruiterID string) (map[string]bool, error)
	UpdateNotes(ctx context.Context, recruiterID, candidateID string, notes *string) error
	Delete(ctx context.Context, recruiterID, candidateID string) error
}

type CandidateDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListCandidates(ctx context.Context, f datastore.CandidateFilter) ([]models.User, error)
}

// SavedCandidateHandler lets recruiters search candidates and keep a shortlist with notes.
type SavedCandidateHandler struct {
	saved      SavedCandidateStore
	candidates CandidateDirectory
}

func NewSavedCandidateHandler(saved SavedCandidateStore, candidates CandidateDirectory) *SavedCandidateHandler {
	return &SavedCandidateHandler{saved: saved, candidates: candidates}
}

type searchResult struct {
	candidateCard
	IsSaved bool `json:"is_saved"`
}

func (h *SavedCandidateHandler) HandleSearch(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	q := r.URL.Query()
	f := datastore.CandidateFilter{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Location: strings.TrimSpace(q.Get("location")),
	}

	users, err := h.candidates.ListCandidates(r.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to search candidates: %w", err)
	}
	savedIDs, err := h.saved.SavedIDs(r.Context(), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to load saved candidates for %s: %w", p.UserID, err)
	}

	results := make([]searchResult, 0, len(users))
	for i := range users {
		results = append(results, searchResult{
			candidateCard: newCandidateCard(&users[i]),
			IsSaved:       savedIDs[users[i].ID],
		})
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      len(results),
		"candidates": results,
		"filters":    map[string]string{"keyword": f.Keyword, "location": f.Location},
	})
	return nil
}

type saveCandidateRequest struct {
	CandidateID string  `json:"candidate_id"`
	Notes       *string `json:"notes"`
}

func (h *SavedCandidateHandler) HandleSave(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req saveCandidateRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	candidateID := strings.TrimSpace(req.CandidateID)
	if candidateID == "" {
		return webutil.FieldError("candidate_id", "Candidate ID is required")
	}
	if _, err := uuid.Parse(candidateID); err != nil {
		return webutil.ErrNotFound("Candidate not found")
	}

	candidate, err := h.candidates.GetUserByID(r.Context(), candidateID)
	if err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Candidate not found", err)
		}
		return fmt.Errorf("failed to load candidate %s: %w", candidateID, err)
	}
	if candidate.Role != models.RoleCandidate || !candidate.IsActive {
		return webutil.ErrNotFound("Candidate not found")
	}

	saved := &models.SavedCandidate{
		RecruiterID: p.UserID,
		CandidateID: candidate.ID,
		Notes:       optionalString(req.Notes),
	}
	if err := h.saved.Save(r.Context(), saved); err != nil {
		if isDuplicate(err) {
			return webutil.ErrBadRequestWrap("Candidate already saved", err)
		}
		return fmt.Errorf("failed to save candidate %s: %w", candidateID, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"message":  "Candidate saved successfully",
		"saved_at": saved.SavedAt.Format(time.RFC3339),
	})
	return nil
}

// savedProfile is one shortlist entry as returned to the recruiter.
type savedProfile struct {
	candidateCard
	Notes   *string   `json:"notes"`
	SavedAt time.Time `json:"saved_at"`
}

func (h *SavedCandidateHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	saved, err := h.saved.ListByRecruiter(r.Context(), p.UserID)
	if err != nil {
		return fmt.Errorf("failed to list saved candidates for %s: %w", p.UserID, err)
	}
	profiles := make([]savedProfile, 0, len(saved))
	for _, s := range saved {
		if s.Candidate == nil {
			continue
		}
		profiles = append(profiles, savedProfile{
			candidateCard: newCandidateCard(s.Candidate),
			Notes:         s.Notes,
			SavedAt:       s.SavedAt,
		})
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(profiles),
		"profiles": profiles,
	})
	return nil
}

type savedNotesRequest struct {
	Notes *string `json:"notes"`
}

func (h *SavedCandidateHandler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	candidateID, err := uuidParam(r, paramCandidateID, "candidate")
	if err != nil {
		return err
	}
	var req savedNotesRequest
	if err := webutil.DecodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if err := h.saved.UpdateNotes(r.Context(), p.UserID, candidateID, optionalString(req.Notes)); err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Saved candidate not found", err)
		}
		return fmt.Errorf("failed to update notes for %s: %w", candidateID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Notes updated successfully",
	})
	return nil
}

func (h *SavedCandidateHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) error {
	p, err := webutil.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	candidateID, err := uuidParam(r, paramCandidateID, "candidate")
	if err != nil {
		return err
	}
	if err := h.saved.Delete(r.Context(), p.UserID, candidateID); err != nil {
		if isNoRows(err) {
			return webutil.ErrNotFoundWrap("Saved candidate not found", err)
		}
		return fmt.Errorf("failed to remove saved candidate %s: %w", candidateID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Candidate removed from saved list",
	})
	return nil
}
