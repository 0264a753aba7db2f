package store

import (
	"context"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

type WorkspaceInput struct {
	Name      string
	Slug      string
	OwnerID   string
	PackageID string
	Color     string
}

// WorkspacePatch carries the fields to change; nil leaves a field alone.
type WorkspacePatch struct {
	Name    *string
	Slug    *string
	OwnerID *string
	Color   *string
}

func (s *Store) ListWorkspaces() []models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Workspace{}, s.state.Workspaces...)
}

func (s *Store) GetWorkspace(id string) *models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.workspaceIndex(id); i >= 0 {
		w := s.state.Workspaces[i]
		return &w
	}
	return nil
}

func (s *Store) workspaceIndex(id string) int {
	for i := range s.state.Workspaces {
		if s.state.Workspaces[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateWorkspace adds a workspace. An empty PackageID selects the first
// package; an unknown one fails with common.ErrPackageNotFound.
func (s *Store) CreateWorkspace(ctx context.Context, in WorkspaceInput) (*models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.newWorkspace(in)
	if err != nil {
		return nil, err
	}
	s.state.Workspaces = append(s.state.Workspaces, w)
	s.persist(ctx)
	return &w, nil
}

func (s *Store) newWorkspace(in WorkspaceInput) (models.Workspace, error) {
	packageID, err := s.resolvePackage(in.PackageID)
	if err != nil {
		return models.Workspace{}, err
	}
	now := s.now()
	w := models.Workspace{
		ID:        s.ids.ID("workspace"),
		Name:      firstNonEmpty(in.Name, defaultWorkspaceName),
		OwnerID:   in.OwnerID,
		PackageID: packageID,
		Color:     firstNonEmpty(in.Color, models.DefaultWorkspaceColor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.Slug = s.ids.Slug(firstNonEmpty(in.Slug, w.Name))
	return w, nil
}

func (s *Store) resolvePackage(id string) (string, error) {
	if id == "" {
		if len(s.state.Packages) == 0 {
			return "", nil
		}
		return s.state.Packages[0].ID, nil
	}
	if findPackage(s.state.Packages, id) == nil {
		return "", common.ErrPackageNotFound
	}
	return id, nil
}

// UpdateWorkspace applies p. The slug changes only when p.Slug is non-empty.
// It returns nil when the workspace does not exist.
func (s *Store) UpdateWorkspace(ctx context.Context, id string, p WorkspacePatch) *models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.workspaceIndex(id)
	if i < 0 {
		return nil
	}
	w := s.state.Workspaces[i]
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Slug != nil && *p.Slug != "" {
		w.Slug = s.ids.Slug(*p.Slug)
	}
	if p.OwnerID != nil {
		w.OwnerID = *p.OwnerID
	}
	if p.Color != nil {
		w.Color = *p.Color
	}
	w.UpdatedAt = s.now()

	s.state.Workspaces[i] = w
	s.persist(ctx)
	return &w
}

// AssignPackage moves a workspace to another package. A missing workspace
// yields (nil, nil).
func (s *Store) AssignPackage(ctx context.Context, workspaceID, packageID string) (*models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.workspaceIndex(workspaceID)
	if i < 0 {
		return nil, nil
	}
	pkg := findPackage(s.state.Packages, packageID)
	if pkg == nil {
		return nil, common.ErrPackageNotFound
	}

	w := s.state.Workspaces[i]
	w.PackageID = pkg.ID
	w.UpdatedAt = s.now()
	s.state.Workspaces[i] = w
	s.persist(ctx)
	return &w, nil
}
