package models

import "github.com/dmitrijs2005/formvault/internal/formschema"

// Form visibilities.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Form is a versioned form definition. Version grows by one on every update;
// ShareKey is unique across all forms.
type Form struct {
	ID          string              `json:"id"`
	WorkspaceID string              `json:"workspaceId"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Version     int                 `json:"version"`
	IsPublished bool                `json:"isPublished"`
	Visibility  string              `json:"visibility"`
	ShareKey    string              `json:"shareKey"`
	Fields      []formschema.Field  `json:"fields"`
	Settings    formschema.Settings `json:"settings"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

// IsShared reports whether the form can be reached through its share key.
func (f Form) IsShared() bool {
	return f.IsPublished && f.Visibility != VisibilityPrivate && f.ShareKey != ""
}

func (f Form) Clone() Form {
	out := f
	if f.Fields != nil {
		out.Fields = make([]formschema.Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	out.Settings = f.Settings.Clone()
	return out
}

// FormSummary is a form plus figures computed from its submissions.
type FormSummary struct {
	Form
	SubmissionCount  int     `json:"submissionCount"`
	LastSubmissionAt *string `json:"lastSubmissionAt"`
}
