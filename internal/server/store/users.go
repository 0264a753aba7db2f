package store

import (
	"context"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

type UserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	WorkspaceID  string
}

type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
	WorkspaceID  *string
}

// OwnerAccountInput describes a signup: a new workspace plus its owner.
type OwnerAccountInput struct {
	Name          string
	Email         string
	PasswordHash  string
	PackageID     string
	WorkspaceName string
}

func (s *Store) ListUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User{}, s.state.Users...)
}

func (s *Store) GetUser(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.userIndex(id); i >= 0 {
		u := s.state.Users[i]
		return &u
	}
	return nil
}

// GetUserByEmail matches case-insensitively. An empty email matches nothing.
func (s *Store) GetUserByEmail(email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.emailIndex(normalizeEmail(email)); i >= 0 {
		u := s.state.Users[i]
		return &u
	}
	return nil
}

func (s *Store) userIndex(id string) int {
	for i := range s.state.Users {
		if s.state.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) emailIndex(email string) int {
	if email == "" {
		return -1
	}
	for i := range s.state.Users {
		if s.state.Users[i].Email == email {
			return i
		}
	}
	return -1
}

// CreateUser adds a user. The email is lower-cased and must be unused.
func (s *Store) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.newUser(in)
	if err != nil {
		return nil, err
	}
	s.state.Users = append(s.state.Users, u)
	s.persist(ctx)
	return &u, nil
}

func (s *Store) newUser(in UserInput) (models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return models.User{}, common.ErrEmailRequired
	}
	if s.emailIndex(email) >= 0 {
		return models.User{}, common.ErrDuplicateEmail
	}
	now := s.now()
	return models.User{
		ID:           s.ids.ID("user"),
		Name:         firstNonEmpty(in.Name, defaultUserName),
		Email:        email,
		PasswordHash: in.PasswordHash,
		Role:         firstNonEmpty(in.Role, models.RoleMember),
		WorkspaceID:  in.WorkspaceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateUser applies p and returns the new record, or nil when the user
// does not exist. Changing the email to one held by another user fails
// with common.ErrDuplicateEmail.
func (s *Store) UpdateUser(ctx context.Context, id string, p UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, nil
	}
	u := s.state.Users[i]
	if p.Email != nil {
		if email := normalizeEmail(*p.Email); email != "" {
			if j := s.emailIndex(email); j >= 0 && j != i {
				return nil, common.ErrDuplicateEmail
			}
			u.Email = email
		}
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.WorkspaceID != nil {
		u.WorkspaceID = *p.WorkspaceID
	}
	u.UpdatedAt = s.now()

	s.state.Users[i] = u
	s.persist(ctx)
	return &u, nil
}

// CreateOwnerAccount creates a workspace and its owner in one step, so the
// email check and both inserts happen under the same lock and are saved
// together. An unknown PackageID falls back to the first package.
func (s *Store) CreateOwnerAccount(ctx context.Context, in OwnerAccountInput) (*models.User, *models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	packageID := in.PackageID
	if findPackage(s.state.Packages, packageID) == nil {
		packageID = ""
	}
	w, err := s.newWorkspace(WorkspaceInput{
		Name:      firstNonEmpty(in.WorkspaceName, firstNonEmpty(in.Name, "New")+"'s Workspace"),
		PackageID: packageID,
	})
	if err != nil {
		return nil, nil, err
	}
	u, err := s.newUser(UserInput{
		Name:         firstNonEmpty(in.Name, "Owner"),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         models.RoleOwner,
		WorkspaceID:  w.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	w.OwnerID = u.ID

	s.state.Workspaces = append(s.state.Workspaces, w)
	s.state.Users = append(s.state.Users, u)
	s.persist(ctx)
	return &u, &w, nil
}
