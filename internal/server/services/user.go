// Package services contains server-side business logic on top of the store.
// This file implements UserService: signup, password and external login,
// and issuing/verifying JWT access tokens.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/auth"
	"github.com/dmitrijs2005/formvault/internal/server/config"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/store"
)

// Session is what a successful authentication returns to the client.
// User never carries the password hash.
type Session struct {
	Token     string            `json:"token"`
	User      models.PublicUser `json:"user"`
	Workspace *models.Workspace `json:"workspace"`
	Package   *models.Package   `json:"package"`
}

type SignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	PackageID     string `json:"packageId"`
	WorkspaceName string `json:"workspaceName"`
}

// UserService provides authentication-related operations.
type UserService struct {
	store     *store.Store
	logger    logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewUserService(st *store.Store, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		store:     st,
		logger:    l.With("module", "user_service"),
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.TokenTTL,
	}
}

// Signup creates a workspace and its owner. Email and password are
// required; a registered email yields common.ErrDuplicateEmail.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}
	if s.store.GetUserByEmail(req.Email) != nil {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error(ctx, "hashing password failed", "error", err)
		return nil, common.ErrorInternal
	}

	user, ws, err := s.store.CreateOwnerAccount(ctx, store.OwnerAccountInput{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		PackageID:     req.PackageID,
		WorkspaceName: req.WorkspaceName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Signed up", "user_id", user.ID, "workspace_id", ws.ID)
	return s.session(*user, ws)
}

// Login checks an email/password pair. Unknown emails, accounts without a
// password and wrong passwords all yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user := s.store.GetUserByEmail(email)
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	return s.session(*user, s.store.GetWorkspace(user.WorkspaceID))
}

// ExternalLogin signs in an identity already verified by an external
// provider. A first login provisions a workspace and an owner without a
// password; a known user whose workspace is gone gets a new one.
func (s *UserService) ExternalLogin(ctx context.Context, email, displayName string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: account email is required", common.ErrorValidation)
	}

	user := s.store.GetUserByEmail(email)
	if user == nil {
		name := displayName
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}
		if name == "" {
			name = "Google User"
		}
		u, ws, err := s.store.CreateOwnerAccount(ctx, store.OwnerAccountInput{
			Name:          name,
			Email:         email,
			WorkspaceName: name + "'s Workspace",
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "Provisioned external account", "user_id", u.ID, "workspace_id", ws.ID)
		return s.session(*u, ws)
	}

	ws := s.store.GetWorkspace(user.WorkspaceID)
	if ws == nil {
		created, err := s.store.CreateWorkspace(ctx, store.WorkspaceInput{
			Name:    firstNonEmpty(user.Name, "Workspace"),
			OwnerID: user.ID,
		})
		if err != nil {
			return nil, err
		}
		updated, err := s.store.UpdateUser(ctx, user.ID, store.UserPatch{WorkspaceID: &created.ID})
		if err != nil {
			return nil, err
		}
		if updated != nil {
			user = updated
		}
		ws = created
	}
	return s.session(*user, ws)
}

// Me returns the session of an authenticated user without a token.
func (s *UserService) Me(ctx context.Context, userID string) (*Session, error) {
	user := s.store.GetUser(userID)
	if user == nil {
		return nil, common.ErrorNotFound
	}
	ws := s.store.GetWorkspace(user.WorkspaceID)
	return &Session{User: user.Public(), Workspace: ws, Package: s.packageOf(ws)}, nil
}

func (s *UserService) IssueToken(user models.User) (string, error) {
	return auth.GenerateToken(auth.Subject{
		UserID:      user.ID,
		WorkspaceID: user.WorkspaceID,
		Role:        user.Role,
	}, s.jwtSecret, s.tokenTTL)
}

// Authenticate resolves a token to its user and workspace.
//
// Bad or expired tokens and unknown users are common.ErrorUnauthorized
// (wrapping the token error); a user without a workspace is
// common.ErrorNotFound.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, *models.Workspace, error) {
	if token == "" {
		return nil, nil, common.ErrorUnauthorized
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	user := s.store.GetUser(claims.Subject)
	if user == nil {
		return nil, nil, common.ErrorUnauthorized
	}
	ws := s.store.GetWorkspace(user.WorkspaceID)
	if ws == nil {
		return nil, nil, fmt.Errorf("workspace %q: %w", user.WorkspaceID, common.ErrorNotFound)
	}
	return user, ws, nil
}

// TokenTTL is the lifetime of issued tokens.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *UserService) session(user models.User, ws *models.Workspace) (*Session, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{
		Token:     token,
		User:      user.Public(),
		Workspace: ws,
		Package:   s.packageOf(ws),
	}, nil
}

func (s *UserService) packageOf(ws *models.Workspace) *models.Package {
	if ws == nil {
		return nil
	}
	return s.store.GetPackage(ws.PackageID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
