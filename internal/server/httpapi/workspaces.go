package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"github.com/go-chi/chi/v5"
)

// ownWorkspace writes 404 unless {id} names the caller's workspace.
func ownWorkspace(w http.ResponseWriter, r *http.Request) *models.Workspace {
	ws := currentWorkspace(r)
	if chi.URLParam(r, "id") != ws.ID {
		writeError(w, http.StatusNotFound, "Workspace not found")
		return nil
	}
	return ws
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, []models.Workspace{*currentWorkspace(r)})
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := ownWorkspace(w, r)
	if ws == nil {
		return
	}
	fresh := s.store.GetWorkspace(ws.ID)
	if fresh == nil {
		writeError(w, http.StatusNotFound, "Workspace not found")
		return
	}
	writeData(w, http.StatusOK, fresh)
}

func (s *Server) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := ownWorkspace(w, r)
	if ws == nil {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Slug  *string `json:"slug"`
		Color *string `json:"color"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}

	updated := s.store.UpdateWorkspace(r.Context(), ws.ID, store.WorkspacePatch{
		Name:  req.Name,
		Slug:  req.Slug,
		Color: req.Color,
	})
	if updated == nil {
		writeError(w, http.StatusNotFound, "Workspace not found")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) listWorkspaceForms(w http.ResponseWriter, r *http.Request) {
	ws := ownWorkspace(w, r)
	if ws == nil {
		return
	}
	writeData(w, http.StatusOK, s.store.ListFormsSummary(ws.ID))
}

// assignPackage switches the plan of the caller's workspace. Only the
// workspace owner may do this.
func (s *Server) assignPackage(w http.ResponseWriter, r *http.Request) {
	ws := ownWorkspace(w, r)
	if ws == nil {
		return
	}
	if currentUser(r).ID != ws.OwnerID {
		writeError(w, http.StatusForbidden, "Only the workspace owner can change the package")
		return
	}
	var req struct {
		PackageID string `json:"packageId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if req.PackageID == "" {
		writeError(w, http.StatusBadRequest, "Package ID is required")
		return
	}

	updated, err := s.store.AssignPackage(r.Context(), ws.ID, req.PackageID)
	if err != nil {
		writeServiceError(w, err, "Unable to change package")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Workspace not found")
		return
	}
	writeData(w, http.StatusOK, updated)
}
