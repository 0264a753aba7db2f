package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/go-chi/chi/v5"
)

const notPublished = "Form not found or not published"

func (s *Server) getPublicForm(w http.ResponseWriter, r *http.Request) {
	shared, err := s.forms.PublicForm(chi.URLParam(r, "shareKey"))
	if err != nil {
		writeError(w, http.StatusNotFound, notPublished)
		return
	}
	writeData(w, http.StatusOK, shared)
}

func (s *Server) submitPublicForm(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := decodeJSON(w, r, &data); err != nil {
		writeServiceError(w, err, "")
		return
	}

	sub, err := s.forms.SubmitShared(r.Context(), chi.URLParam(r, "shareKey"), data)
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, notPublished)
		return
	}
	if err != nil {
		writeServiceError(w, err, "Unable to store submission")
		return
	}
	writeData(w, http.StatusCreated, map[string]string{
		"id":          sub.ID,
		"submittedAt": sub.SubmittedAt,
	})
}
