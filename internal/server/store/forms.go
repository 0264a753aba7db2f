package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

// FormInput describes a new form. Fields and Settings are raw JSON so that
// legacy shapes go through the same coercion as stored records.
type FormInput struct {
	WorkspaceID string
	Name        string
	Slug        string
	Description string
	Version     int
	IsPublished bool
	Visibility  string
	Fields      json.RawMessage
	Settings    json.RawMessage
}

// FormPatch carries the fields to change; nil (or empty raw JSON) leaves a
// field alone.
type FormPatch struct {
	Name        *string
	Slug        *string
	Description *string
	IsPublished *bool
	Visibility  *string
	Fields      json.RawMessage
	Settings    json.RawMessage
}

// ListForms returns the forms of one workspace, or all forms when
// workspaceID is empty.
func (s *Store) ListForms(workspaceID string) []models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listForms(workspaceID)
}

func (s *Store) listForms(workspaceID string) []models.Form {
	out := make([]models.Form, 0, len(s.state.Forms))
	for _, f := range s.state.Forms {
		if workspaceID == "" || f.WorkspaceID == workspaceID {
			out = append(out, f.Clone())
		}
	}
	return out
}

// ListFormsSummary is ListForms with submission figures attached.
func (s *Store) ListFormsSummary(workspaceID string) []models.FormSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	forms := s.listForms(workspaceID)
	out := make([]models.FormSummary, len(forms))
	for i, f := range forms {
		out[i] = models.FormSummary{Form: f}
		for _, sub := range s.state.Submissions {
			if sub.FormID != f.ID {
				continue
			}
			if out[i].SubmissionCount == 0 {
				at := sub.SubmittedAt
				out[i].LastSubmissionAt = &at
			}
			out[i].SubmissionCount++
		}
	}
	return out
}

func (s *Store) GetForm(id string) *models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findForm(func(f models.Form) bool { return f.ID == id })
}

func (s *Store) GetFormBySlug(slug string) *models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findForm(func(f models.Form) bool { return f.Slug == slug })
}

// GetFormByShareKey never matches the empty key.
func (s *Store) GetFormByShareKey(key string) *models.Form {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findForm(func(f models.Form) bool { return f.ShareKey == key })
}

func (s *Store) findForm(match func(models.Form) bool) *models.Form {
	for _, f := range s.state.Forms {
		if match(f) {
			out := f.Clone()
			return &out
		}
	}
	return nil
}

func (s *Store) formIndex(id string) int {
	for i := range s.state.Forms {
		if s.state.Forms[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) shareKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.state.Forms))
	for _, f := range s.state.Forms {
		if f.ShareKey != "" {
			keys[f.ShareKey] = struct{}{}
		}
	}
	return keys
}

// CreateForm adds a form with a fresh share key. Fields that are not an
// array are stored as an empty list; only an explicit "private" visibility
// makes the form private.
func (s *Store) CreateForm(ctx context.Context, in FormInput) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.ids.ShareKey(s.shareKeys())
	if err != nil {
		return nil, err
	}

	fields, _, err := formschema.DecodeFields(in.Fields)
	if err != nil || fields == nil {
		fields = []formschema.Field{}
	}
	settings, _ := formschema.MergeSettings(decodeObject(in.Settings))

	workspaceID := in.WorkspaceID
	if workspaceID == "" {
		workspaceID = defaultWorkspaceID
		if len(s.state.Workspaces) > 0 {
			workspaceID = s.state.Workspaces[0].ID
		}
	}
	visibility := models.VisibilityPublic
	if in.Visibility == models.VisibilityPrivate {
		visibility = models.VisibilityPrivate
	}
	version := in.Version
	if version < 1 {
		version = 1
	}

	now := s.now()
	f := models.Form{
		ID:          s.ids.ID("form"),
		WorkspaceID: workspaceID,
		Name:        firstNonEmpty(in.Name, defaultFormName),
		Description: in.Description,
		Version:     version,
		IsPublished: in.IsPublished,
		Visibility:  visibility,
		ShareKey:    key,
		Fields:      fields,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.Slug = s.ids.Slug(firstNonEmpty(in.Slug, f.Name))

	s.state.Forms = append(s.state.Forms, f)
	s.persist(ctx)
	out := f.Clone()
	return &out, nil
}

// UpdateForm applies p, bumps the version by one and returns the new
// record, or nil when the form does not exist. Settings are overlaid on the
// current ones key by key before merging with the defaults. The slug only
// changes when p.Slug is non-empty.
func (s *Store) UpdateForm(ctx context.Context, id string, p FormPatch) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.formIndex(id)
	if i < 0 {
		return nil, nil
	}

	fields, _, err := formschema.DecodeFields(p.Fields)
	if err != nil {
		if errors.Is(err, common.ErrInvalidFields) {
			return nil, err
		}
		return nil, common.ErrInvalidFields
	}

	f := s.state.Forms[i].Clone()
	if fields != nil {
		f.Fields = fields
	}
	if patch := decodeObject(p.Settings); patch != nil {
		current := toGeneric(f.Settings)
		if current == nil {
			current = map[string]any{}
		}
		for k, v := range patch {
			current[k] = v
		}
		f.Settings, _ = formschema.MergeSettings(current)
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Slug != nil && *p.Slug != "" {
		f.Slug = s.ids.Slug(*p.Slug)
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.IsPublished != nil {
		f.IsPublished = *p.IsPublished
	}
	if p.Visibility != nil {
		f.Visibility = models.VisibilityPublic
		if *p.Visibility == models.VisibilityPrivate {
			f.Visibility = models.VisibilityPrivate
		}
	}
	f.Version++
	f.UpdatedAt = s.now()

	s.state.Forms[i] = f
	s.persist(ctx)
	out := f.Clone()
	return &out, nil
}

// DeleteForm removes a form together with its submissions.
func (s *Store) DeleteForm(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.formIndex(id)
	if i < 0 {
		return false
	}
	s.state.Forms = append(s.state.Forms[:i], s.state.Forms[i+1:]...)

	kept := s.state.Submissions[:0]
	for _, sub := range s.state.Submissions {
		if sub.FormID != id {
			kept = append(kept, sub)
		}
	}
	s.state.Submissions = kept
	s.persist(ctx)
	return true
}

// RegenerateShareKey gives the form a key distinct from every current key,
// its own included. A missing form yields (nil, nil).
func (s *Store) RegenerateShareKey(ctx context.Context, id string) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.formIndex(id)
	if i < 0 {
		return nil, nil
	}
	key, err := s.ids.ShareKey(s.shareKeys())
	if err != nil {
		return nil, err
	}

	f := &s.state.Forms[i]
	f.ShareKey = key
	f.UpdatedAt = s.now()
	s.persist(ctx)
	out := f.Clone()
	return &out, nil
}

// decodeObject returns data as a JSON object, or nil when it is anything
// else.
func decodeObject(data json.RawMessage) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
