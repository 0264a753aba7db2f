package store

import (
	"context"

	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

// DefaultRecentLimit is used by ListRecentSubmissions for a non-positive
// limit.
const DefaultRecentLimit = 10

// ListSubmissions returns the submissions of a form, newest first.
func (s *Store) ListSubmissions(formID string) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Submission, 0)
	for _, sub := range s.state.Submissions {
		if sub.FormID == formID {
			out = append(out, sub.Clone())
		}
	}
	return out
}

func (s *Store) GetSubmission(id string) *models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.state.Submissions {
		if sub.ID == id {
			out := sub.Clone()
			return &out
		}
	}
	return nil
}

func (s *Store) GetSubmissionCount(formID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sub := range s.state.Submissions {
		if sub.FormID == formID {
			n++
		}
	}
	return n
}

// GetLastSubmissionAt returns the submittedAt of the newest submission.
func (s *Store) GetLastSubmissionAt(formID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.state.Submissions {
		if sub.FormID == formID {
			return sub.SubmittedAt, true
		}
	}
	return "", false
}

// ListRecentSubmissions returns the newest submissions across all forms.
func (s *Store) ListRecentSubmissions(limit int) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > len(s.state.Submissions) {
		limit = len(s.state.Submissions)
	}
	out := make([]models.Submission, limit)
	for i := range out {
		out[i] = s.state.Submissions[i].Clone()
	}
	return out
}

// AddSubmission stores a copy of data as the newest submission of a form.
// It returns nil when the form does not exist.
func (s *Store) AddSubmission(ctx context.Context, formID string, data map[string]any) *models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.formIndex(formID) < 0 {
		return nil
	}
	payload := formschema.CloneMap(data)
	if payload == nil {
		payload = map[string]any{}
	}
	sub := models.Submission{
		ID:          s.ids.ID("submission"),
		FormID:      formID,
		SubmittedAt: s.now(),
		Data:        payload,
	}
	s.state.Submissions = append([]models.Submission{sub}, s.state.Submissions...)
	s.persist(ctx)

	out := sub.Clone()
	return &out
}

func (s *Store) DeleteSubmission(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.state.Submissions {
		if sub.ID == id {
			s.state.Submissions = append(s.state.Submissions[:i], s.state.Submissions[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}
