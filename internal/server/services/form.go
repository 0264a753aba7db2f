package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/store"
)

// MissingFieldsError lists the required fields a submission left empty.
// It matches common.ErrorValidation.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return common.ErrorValidation
}

// PublicForm is the part of a form visible through its share link.
type PublicForm struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	WorkspaceID string              `json:"workspaceId"`
	Slug        string              `json:"slug"`
	IsPublished bool                `json:"isPublished"`
	Visibility  string              `json:"visibility"`
	Settings    formschema.Settings `json:"settings"`
	Fields      []formschema.Field  `json:"fields"`
}

type PublicWorkspace struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SharedForm is what GET on a share key returns.
type SharedForm struct {
	Form      PublicForm       `json:"form"`
	Workspace *PublicWorkspace `json:"workspace"`
}

// FormService validates and records submissions and manages share links.
type FormService struct {
	store    *store.Store
	notifier *Notifier
	logger   logging.Logger
}

func NewFormService(st *store.Store, n *Notifier, l logging.Logger) *FormService {
	return &FormService{store: st, notifier: n, logger: l.With("module", "form_service")}
}

// Submit records a submission arriving through a share link: required
// fields are checked and, when the form configures it, the elapsed minutes
// between its start and end fields are stored under __durationMinutes.
func (s *FormService) Submit(ctx context.Context, form models.Form, data map[string]any) (*models.Submission, error) {
	payload := formschema.CloneMap(data)
	if payload == nil {
		payload = map[string]any{}
	}
	if missing := formschema.MissingRequired(form.Fields, payload); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if rule := form.Settings.AutoCalculateDuration; rule.Enabled() {
		if minutes, ok := formschema.DurationMinutes(payload[rule.StartField], payload[rule.EndField]); ok {
			payload[common.DurationMinutesKey] = minutes
		}
	}
	return s.record(ctx, form, payload)
}

// Record stores a submission entered by a workspace member. Required fields
// are checked; no values are computed.
func (s *FormService) Record(ctx context.Context, form models.Form, data map[string]any) (*models.Submission, error) {
	if missing := formschema.MissingRequired(form.Fields, data); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	return s.record(ctx, form, data)
}

func (s *FormService) record(ctx context.Context, form models.Form, data map[string]any) (*models.Submission, error) {
	sub := s.store.AddSubmission(ctx, form.ID, data)
	if sub == nil {
		return nil, fmt.Errorf("form %q: %w", form.ID, common.ErrorNotFound)
	}
	s.logger.Info(ctx, "Submission stored", "form_id", form.ID, "submission_id", sub.ID)
	if s.notifier != nil {
		s.notifier.Dispatch(ctx, form, *sub, s.store.GetWorkspace(form.WorkspaceID))
	}
	return sub, nil
}

// Share issues a new share key. Private forms yield common.ErrPrivateForm.
func (s *FormService) Share(ctx context.Context, form models.Form) (*models.Form, error) {
	if form.Visibility == models.VisibilityPrivate {
		return nil, common.ErrPrivateForm
	}
	updated, err := s.store.RegenerateShareKey(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, common.ErrorNotFound
	}
	return updated, nil
}

// SharedForm resolves a share key to a published public form.
func (s *FormService) SharedForm(shareKey string) (*models.Form, error) {
	form := s.store.GetFormByShareKey(shareKey)
	if form == nil || !form.IsShared() {
		return nil, common.ErrorNotFound
	}
	return form, nil
}

// PublicForm is SharedForm trimmed to what anonymous visitors may see.
func (s *FormService) PublicForm(shareKey string) (*SharedForm, error) {
	form, err := s.SharedForm(shareKey)
	if err != nil {
		return nil, err
	}
	out := &SharedForm{Form: PublicForm{
		Name:        form.Name,
		Description: form.Description,
		WorkspaceID: form.WorkspaceID,
		Slug:        form.Slug,
		IsPublished: form.IsPublished,
		Visibility:  form.Visibility,
		Settings:    form.Settings,
		Fields:      form.Fields,
	}}
	if ws := s.store.GetWorkspace(form.WorkspaceID); ws != nil {
		out.Workspace = &PublicWorkspace{ID: ws.ID, Name: ws.Name, Color: ws.Color}
	}
	return out, nil
}

// SubmitShared resolves shareKey and submits data to it.
func (s *FormService) SubmitShared(ctx context.Context, shareKey string, data map[string]any) (*models.Submission, error) {
	form, err := s.SharedForm(shareKey)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, *form, data)
}
