package store

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

// Defaults applied while repairing records.
const (
	defaultWorkspaceID   = "default-workspace"
	defaultFormName      = "Untitled Form"
	defaultWorkspaceName = "New Workspace"
	defaultUserName      = "User"
)

// normalize rebuilds a typed state from a decoded snapshot, repairing every
// record on the way, and reports whether the result differs from raw.
//
// Running it on its own output yields the same state and reports false.
func (s *Store) normalize(ctx context.Context, raw map[string]any) (models.State, bool) {
	now := s.now()
	r := repair{store: s, ctx: ctx, now: now}

	packages := r.packages(collection(raw, "packages", seedCollection))
	workspaces := r.workspaces(collection(raw, "workspaces", seedCollection), packages)
	users := r.users(collection(raw, "users", seedCollection), workspaces)
	r.workspaceOwners(collection(raw, "workspaces", seedCollection), workspaces, users)
	forms := r.forms(collection(raw, "forms", nil), workspaces)
	submissions := r.submissions(collection(raw, "submissions", nil), forms)

	state := models.State{
		Workspaces:  workspaces,
		Forms:       forms,
		Submissions: submissions,
		Users:       users,
		Packages:    packages,
	}
	return state, !formschema.SameJSON(raw, state)
}

// collection returns raw[name] when it is a list, otherwise the fallback
// (or an empty list).
func collection(raw map[string]any, name string, fallback func(string) []any) []any {
	if list, ok := raw[name].([]any); ok {
		return list
	}
	if fallback != nil {
		return fallback(name)
	}
	return []any{}
}

type repair struct {
	store *Store
	ctx   context.Context
	now   string
}

// str returns m[key] when it is a non-empty string.
func str(m map[string]any, key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok && v != ""
}

func strOr(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func (r repair) timestamp(m map[string]any, key string) string {
	if v, ok := str(m, key); ok {
		return v
	}
	return r.now
}

func (r repair) packages(list []any) []models.Package {
	out := make([]models.Package, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := models.Package{
			ID:              strOr(m, "id", ""),
			Name:            strOr(m, "name", ""),
			Description:     strOr(m, "description", ""),
			PriceMonthly:    number(m["priceMonthly"]),
			PriceAnnual:     number(m["priceAnnual"]),
			FormLimit:       limit(m["formLimit"]),
			SubmissionLimit: limit(m["submissionLimit"]),
			CreatedAt:       r.timestamp(m, "createdAt"),
			UpdatedAt:       r.timestamp(m, "updatedAt"),
		}
		if p.ID == "" {
			p.ID = r.store.ids.ID("package")
		}
		out = append(out, p)
	}
	return out
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

func limit(v any) *int {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

func findPackage(packages []models.Package, id string) *models.Package {
	if id == "" {
		return nil
	}
	for i := range packages {
		if packages[i].ID == id {
			return &packages[i]
		}
	}
	return nil
}

func (r repair) workspaces(list []any, packages []models.Package) []models.Workspace {
	out := make([]models.Workspace, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		w := models.Workspace{
			Name:      strOr(m, "name", defaultWorkspaceName),
			Color:     strOr(m, "color", models.DefaultWorkspaceColor),
			CreatedAt: r.timestamp(m, "createdAt"),
			UpdatedAt: r.timestamp(m, "updatedAt"),
		}
		if id, ok := str(m, "id"); ok {
			w.ID = id
		} else {
			w.ID = r.store.ids.ID("workspace")
		}
		if slug, ok := str(m, "slug"); ok {
			w.Slug = slug
		} else {
			w.Slug = r.store.ids.Slug(firstNonEmpty(w.Name, w.ID))
		}
		if pkg := findPackage(packages, strOr(m, "packageId", "")); pkg != nil {
			w.PackageID = pkg.ID
		} else if len(packages) > 0 {
			w.PackageID = packages[0].ID
		}
		out = append(out, w)
	}
	return out
}

// workspaceOwners fills ownerId for workspaces whose record has none, using
// the first user.
func (r repair) workspaceOwners(list []any, workspaces []models.Workspace, users []models.User) {
	i := 0
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if owner, ok := m["ownerId"].(string); ok {
			workspaces[i].OwnerID = owner
		} else if len(users) > 0 {
			workspaces[i].OwnerID = users[0].ID
		}
		i++
	}
}

func (r repair) users(list []any, workspaces []models.Workspace) []models.User {
	defaultWorkspace := ""
	if len(workspaces) > 0 {
		defaultWorkspace = workspaces[0].ID
	}

	out := make([]models.User, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		u := models.User{
			Name:         strOr(m, "name", defaultUserName),
			Email:        normalizeEmail(strOr(m, "email", "")),
			PasswordHash: strOr(m, "passwordHash", ""),
			Role:         models.RoleMember,
			WorkspaceID:  defaultWorkspace,
			CreatedAt:    r.timestamp(m, "createdAt"),
			UpdatedAt:    r.timestamp(m, "updatedAt"),
		}
		if id, ok := str(m, "id"); ok {
			u.ID = id
		} else {
			u.ID = r.store.ids.ID("user")
		}
		if role, ok := str(m, "role"); ok {
			u.Role = role
		}
		if ws, ok := m["workspaceId"].(string); ok {
			u.WorkspaceID = ws
		}
		out = append(out, u)
	}

	seen := make(map[string]string, len(out))
	for _, u := range out {
		if u.Email == "" {
			continue
		}
		if other, dup := seen[u.Email]; dup {
			r.store.log.Warn(r.ctx, "duplicate user email in snapshot", "email", u.Email, "user_id", u.ID, "other_user_id", other)
			continue
		}
		seen[u.Email] = u.ID
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r repair) forms(list []any, workspaces []models.Workspace) []models.Form {
	defaultWorkspace := defaultWorkspaceID
	if len(workspaces) > 0 {
		defaultWorkspace = workspaces[0].ID
	}

	// keys present anywhere in the snapshot; new keys must avoid all of them
	known := make(map[string]struct{})
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if key, ok := str(m, "shareKey"); ok {
				known[key] = struct{}{}
			}
		}
	}
	assigned := make(map[string]struct{}, len(list))

	out := make([]models.Form, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f := r.form(m, defaultWorkspace)

		key, ok := str(m, "shareKey")
		if _, taken := assigned[key]; !ok || taken {
			key = r.shareKey(known, f.ID)
		}
		f.ShareKey = key
		if key != "" {
			assigned[key] = struct{}{}
			known[key] = struct{}{}
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		seed := seedCollection("forms")[0].(map[string]any)
		ws := strOr(seed, "workspaceId", "")
		if !hasWorkspace(workspaces, ws) && len(workspaces) > 0 {
			ws = workspaces[0].ID
		}
		f := r.form(seed, ws)
		f.WorkspaceID = ws
		f.ShareKey = r.shareKey(known, f.ID)
		out = append(out, f)
	}
	return out
}

func hasWorkspace(workspaces []models.Workspace, id string) bool {
	for _, w := range workspaces {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (r repair) shareKey(known map[string]struct{}, formID string) string {
	key, err := r.store.ids.ShareKey(known)
	if err != nil {
		r.store.log.Error(r.ctx, "unable to assign share key", "form_id", formID, "error", err)
		return ""
	}
	return key
}

// form repairs one form record except its share key.
func (r repair) form(m map[string]any, defaultWorkspace string) models.Form {
	f := models.Form{
		WorkspaceID: defaultWorkspace,
		Name:        strOr(m, "name", defaultFormName),
		Description: strOr(m, "description", ""),
		Version:     1,
		CreatedAt:   r.timestamp(m, "createdAt"),
		UpdatedAt:   r.timestamp(m, "updatedAt"),
	}
	if id, ok := str(m, "id"); ok {
		f.ID = id
	} else {
		f.ID = r.store.ids.ID("form")
	}
	if ws, ok := str(m, "workspaceId"); ok {
		f.WorkspaceID = ws
	}
	if slug, ok := str(m, "slug"); ok {
		f.Slug = slug
	} else {
		f.Slug = r.store.ids.Slug(firstNonEmpty(f.Name, f.ID))
	}
	if v, ok := m["version"].(float64); ok && v >= 1 {
		f.Version = int(v)
	}
	switch v := m["isPublished"].(type) {
	case bool:
		f.IsPublished = v
	case nil:
	default:
		f.IsPublished = true
	}
	switch vis := strOr(m, "visibility", ""); vis {
	case models.VisibilityPublic, models.VisibilityPrivate:
		f.Visibility = vis
	default:
		f.Visibility = models.VisibilityPrivate
		if f.IsPublished {
			f.Visibility = models.VisibilityPublic
		}
	}

	if list, ok := m["fields"].([]any); ok {
		f.Fields, _ = formschema.NormalizeFields(list)
	} else {
		f.Fields = []formschema.Field{}
	}
	settings, _ := m["settings"].(map[string]any)
	f.Settings, _ = formschema.MergeSettings(settings)
	return f
}

func (r repair) submissions(list []any, forms []models.Form) []models.Submission {
	ids := make(map[string]struct{}, len(forms))
	for _, f := range forms {
		ids[f.ID] = struct{}{}
	}

	out := make([]models.Submission, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		formID := strOr(m, "formId", "")
		if _, ok := ids[formID]; !ok {
			continue
		}
		sub := models.Submission{
			FormID:      formID,
			SubmittedAt: r.timestamp(m, "submittedAt"),
		}
		if id, ok := str(m, "id"); ok {
			sub.ID = id
		} else {
			sub.ID = r.store.ids.ID("submission")
		}
		if data, ok := m["data"].(map[string]any); ok {
			sub.Data = formschema.CloneMap(data)
		} else {
			sub.Data = map[string]any{}
		}
		out = append(out, sub)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
