package models

import "github.com/dmitrijs2005/formvault/internal/formschema"

type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	SubmittedAt string         `json:"submittedAt"`
	Data        map[string]any `json:"data"`
}

func (s Submission) Clone() Submission {
	out := s
	out.Data = formschema.CloneMap(s.Data)
	return out
}
