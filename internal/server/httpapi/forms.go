package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/server/export"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"github.com/go-chi/chi/v5"
)

type formStats struct {
	SubmissionCount  int     `json:"submissionCount"`
	LastSubmissionAt *string `json:"lastSubmissionAt"`
}

type formResponse struct {
	models.Form
	ShareURL string `json:"shareUrl"`
	*formStats
}

type formRequest struct {
	Name        *string         `json:"name"`
	Slug        *string         `json:"slug"`
	Description *string         `json:"description"`
	IsPublished *bool           `json:"isPublished"`
	Visibility  *string         `json:"visibility"`
	Fields      json.RawMessage `json:"fields"`
	Settings    json.RawMessage `json:"settings"`
}

// origin rebuilds the scheme and host the client used, honouring a proxy's
// X-Forwarded-Proto.
func origin(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return proto + "://" + r.Host
}

func shareURL(r *http.Request, key string) string {
	return origin(r) + "/share/" + key
}

func toFormResponse(r *http.Request, f models.Form) formResponse {
	return formResponse{Form: f, ShareURL: shareURL(r, f.ShareKey)}
}

func isJSONArray(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// workspaceForm loads the {id} form when it belongs to the caller's
// workspace; otherwise it writes 404 and returns nil.
func (s *Server) workspaceForm(w http.ResponseWriter, r *http.Request) *models.Form {
	form := s.store.GetForm(chi.URLParam(r, "id"))
	if form == nil || form.WorkspaceID != currentWorkspace(r).ID {
		writeError(w, http.StatusNotFound, "Form not found")
		return nil
	}
	return form
}

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	withStats := r.URL.Query().Get("includeStats") != "false"

	summaries := s.store.ListFormsSummary(currentWorkspace(r).ID)
	out := make([]formResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp := toFormResponse(r, sum.Form)
		if withStats {
			resp.formStats = &formStats{
				SubmissionCount:  sum.SubmissionCount,
				LastSubmissionAt: sum.LastSubmissionAt,
			}
		}
		out = append(out, resp)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if deref(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Form name is required")
		return
	}
	if !isJSONArray(req.Fields) {
		writeError(w, http.StatusBadRequest, "Fields must be an array")
		return
	}

	in := store.FormInput{
		WorkspaceID: currentWorkspace(r).ID,
		Name:        *req.Name,
		Slug:        deref(req.Slug),
		Description: deref(req.Description),
		Visibility:  deref(req.Visibility),
		Fields:      req.Fields,
		Settings:    req.Settings,
	}
	if req.IsPublished != nil {
		in.IsPublished = *req.IsPublished
	}

	form, err := s.store.CreateForm(r.Context(), in)
	if err != nil {
		s.logger.Error(r.Context(), "create form failed", "error", err)
		writeServiceError(w, err, "Unable to create form")
		return
	}
	writeData(w, http.StatusCreated, toFormResponse(r, *form))
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	writeData(w, http.StatusOK, toFormResponse(r, *form))
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	var req formRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}

	updated, err := s.store.UpdateForm(r.Context(), form.ID, store.FormPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsPublished: req.IsPublished,
		Visibility:  req.Visibility,
		Fields:      req.Fields,
		Settings:    req.Settings,
	})
	if err != nil {
		writeServiceError(w, err, "Unable to update form")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	writeData(w, http.StatusOK, toFormResponse(r, *updated))
}

func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	s.store.DeleteForm(r.Context(), form.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) shareForm(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	updated, err := s.forms.Share(r.Context(), *form)
	if err != nil {
		writeServiceError(w, err, "Unable to generate share link")
		return
	}
	writeData(w, http.StatusOK, map[string]string{
		"shareKey": updated.ShareKey,
		"shareUrl": shareURL(r, updated.ShareKey),
	})
}

func (s *Server) publishForm(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	var req struct {
		IsPublished *bool `json:"isPublished"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	publish := true
	if req.IsPublished != nil {
		publish = *req.IsPublished
	}

	updated, err := s.store.UpdateForm(r.Context(), form.ID, store.FormPatch{IsPublished: &publish})
	if err != nil {
		writeServiceError(w, err, "Unable to update form")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	writeData(w, http.StatusOK, toFormResponse(r, *updated))
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	writeData(w, http.StatusOK, s.store.ListSubmissions(form.ID))
}

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	var data map[string]any
	if err := decodeJSON(w, r, &data); err != nil {
		writeServiceError(w, err, "")
		return
	}

	sub, err := s.forms.Record(r.Context(), *form, data)
	if err != nil {
		writeServiceError(w, err, "Unable to store submission")
		return
	}
	writeData(w, http.StatusCreated, sub)
}

func (s *Server) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	sub := s.store.GetSubmission(chi.URLParam(r, "submissionID"))
	if sub == nil || sub.FormID != form.ID {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}
	s.store.DeleteSubmission(r.Context(), sub.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	form := s.workspaceForm(w, r)
	if form == nil {
		return
	}
	if !form.Settings.AllowCSVExport {
		writeError(w, http.StatusForbidden, "CSV export is disabled for this form")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(*form)+`"`)
	if err := export.WriteCSV(w, *form, s.store.ListSubmissions(form.ID)); err != nil {
		s.logger.Error(r.Context(), "csv export failed", "form_id", form.ID, "error", err)
	}
}
