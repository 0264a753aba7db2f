package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/idgen"
	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"github.com/dmitrijs2005/formvault/internal/server/snapshot"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

const fixedISO = "2024-05-01T12:00:00.000Z"

func fixedClock() time.Time { return fixedNow }

func newTestStore(t *testing.T, body []byte, opts ...Option) (*Store, *snapshot.MemoryStore) {
	t.Helper()
	mem := snapshot.NewMemoryStore(body)
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(context.Background(), mem, logging.Discard(), opts...), mem
}

type brokenSnapshot struct{ saves int }

func (b *brokenSnapshot) Load(context.Context) ([]byte, error) {
	return nil, errors.New("permission denied")
}

func (b *brokenSnapshot) Save(context.Context, []byte) error {
	b.saves++
	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func strPtr(s string) *string { return &s }

func TestNew_SeedsMissingSnapshot(t *testing.T) {
	s, mem := newTestStore(t, nil)

	assert.Equal(t, 1, mem.Saves())

	forms := s.ListForms("")
	require.Len(t, forms, 1)
	assert.Equal(t, SeedFormID, forms[0].ID)
	assert.Equal(t, SeedWorkspaceID, forms[0].WorkspaceID)
	assert.Len(t, forms[0].ShareKey, 8)
	assert.Equal(t, fixedISO, forms[0].CreatedAt)
	assert.True(t, forms[0].IsShared())

	owner := s.GetUserByEmail("OWNER@landscape.app")
	require.NotNil(t, owner)
	assert.Equal(t, models.RoleOwner, owner.Role)

	ws := s.GetWorkspace(SeedWorkspaceID)
	require.NotNil(t, ws)
	assert.Equal(t, owner.ID, ws.OwnerID)
	assert.NotNil(t, s.GetPackage(ws.PackageID))
	assert.Len(t, s.ListPackages(), 3)
}

func TestNormalize_Idempotent(t *testing.T) {
	s, mem := newTestStore(t, nil)
	require.Equal(t, 1, mem.Saves())

	assert.False(t, s.Normalize(context.Background()))
	assert.Equal(t, 1, mem.Saves())

	body := mem.Body()
	reopened, mem2 := newTestStore(t, body)
	assert.Equal(t, 0, mem2.Saves())
	assert.Equal(t, string(body), string(mem2.Body()))

	if diff := cmp.Diff(s.Snapshot(), reopened.Snapshot()); diff != "" {
		t.Errorf("state changed on reload (-want +got):\n%s", diff)
	}
}

const legacySnapshot = `{
  "workspaces": [
    {"id": "ws-1", "name": "Acme", "packageId": "package-gone"}
  ],
  "users": [
    {"id": "u-1", "name": "Ann", "email": "  Ann@Example.COM "}
  ],
  "forms": [
    {"id": "f-1", "name": "Visit Log", "isPublished": true, "shareKey": "dup-key",
     "fields": [{"id": "photo", "type": "image", "required": true}, 7],
     "settings": {"notifications": {"enabled": true, "recipients": []}}},
    {"id": "f-2", "name": "Second", "shareKey": "dup-key", "fields": "oops"},
    "garbage"
  ],
  "submissions": [
    {"id": "s-1", "formId": "f-1", "submittedAt": "2024-01-01T00:00:00.000Z", "data": {"a": 1}},
    {"id": "s-2", "formId": "missing", "data": {}}
  ]
}`

func TestNew_RepairsLegacySnapshot(t *testing.T) {
	s, mem := newTestStore(t, []byte(legacySnapshot))
	assert.Equal(t, 1, mem.Saves())

	state := s.Snapshot()
	assert.Len(t, state.Packages, 3, "missing packages collection is seeded")

	require.Len(t, state.Workspaces, 1)
	ws := state.Workspaces[0]
	assert.Equal(t, state.Packages[0].ID, ws.PackageID)
	assert.Equal(t, "u-1", ws.OwnerID)
	assert.Equal(t, "acme", ws.Slug)
	assert.Equal(t, models.DefaultWorkspaceColor, ws.Color)

	require.Len(t, state.Users, 1)
	assert.Equal(t, "ann@example.com", state.Users[0].Email)
	assert.Equal(t, models.RoleMember, state.Users[0].Role)
	assert.Equal(t, "ws-1", state.Users[0].WorkspaceID)

	require.Len(t, state.Forms, 2)
	f1, f2 := state.Forms[0], state.Forms[1]
	assert.Equal(t, "ws-1", f1.WorkspaceID)
	assert.Equal(t, "visit-log", f1.Slug)
	assert.Equal(t, 1, f1.Version)
	assert.Equal(t, models.VisibilityPublic, f1.Visibility)
	assert.Equal(t, models.VisibilityPrivate, f2.Visibility)
	assert.Equal(t, "dup-key", f1.ShareKey)
	assert.NotEqual(t, f1.ShareKey, f2.ShareKey)
	assert.Len(t, f2.ShareKey, 8)

	require.Len(t, f1.Fields, 1)
	assert.False(t, f1.Fields[0].Required)
	require.NotNil(t, f1.Fields[0].Image)
	assert.True(t, f1.Fields[0].Image.DisplayOnly)
	assert.False(t, f1.Settings.Notifications.Enabled)
	assert.True(t, f1.Settings.AllowCSVExport)
	assert.Empty(t, f2.Fields)

	require.Len(t, state.Submissions, 1)
	assert.Equal(t, "s-1", state.Submissions[0].ID)

	// the repaired snapshot is stable
	assert.False(t, s.Normalize(context.Background()))
	_, mem2 := newTestStore(t, mem.Body())
	assert.Equal(t, 0, mem2.Saves())
}

func TestNew_EmptyFormsGetSeedForm(t *testing.T) {
	s, mem := newTestStore(t, []byte(`{"workspaces":[{"id":"ws-9","name":"Solo"}],"forms":[],"submissions":[],"users":[],"packages":[]}`))
	assert.Equal(t, 1, mem.Saves())

	forms := s.ListForms("")
	require.Len(t, forms, 1)
	assert.Equal(t, SeedFormID, forms[0].ID)
	assert.Equal(t, "ws-9", forms[0].WorkspaceID)
	assert.NotEmpty(t, forms[0].ShareKey)
	assert.Equal(t, "", s.GetWorkspace("ws-9").PackageID)
}

func TestNew_CorruptSnapshotIsNotOverwritten(t *testing.T) {
	s, mem := newTestStore(t, []byte("{not json"))

	assert.Equal(t, 0, mem.Saves())
	assert.Equal(t, "{not json", string(mem.Body()))
	assert.NotNil(t, s.GetForm(SeedFormID))
}

func TestNew_LoadErrorFallsBackToSeed(t *testing.T) {
	snap := &brokenSnapshot{}
	s := New(context.Background(), snap, logging.Discard(), WithClock(fixedClock))

	assert.Equal(t, 0, snap.saves)
	assert.NotNil(t, s.GetWorkspace(SeedWorkspaceID))
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	s, mem := newTestStore(t, nil)
	mem.FailSaves(errors.New("disk full"))

	w, err := s.CreateWorkspace(context.Background(), WorkspaceInput{Name: "Offline"})
	require.NoError(t, err)
	assert.NotNil(t, s.GetWorkspace(w.ID))
	assert.Equal(t, 1, mem.Saves())
}

func TestCreateWorkspace(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, nil)

	w, err := s.CreateWorkspace(ctx, WorkspaceInput{Name: "Green Ways Crew"})
	require.NoError(t, err)
	assert.Regexp(t, `^workspace-`, w.ID)
	assert.Equal(t, "green-ways-crew", w.Slug)
	assert.Equal(t, s.ListPackages()[0].ID, w.PackageID)
	assert.Equal(t, models.DefaultWorkspaceColor, w.Color)
	assert.Equal(t, fixedISO, w.CreatedAt)
	assert.Equal(t, 2, mem.Saves())

	_, err = s.CreateWorkspace(ctx, WorkspaceInput{Name: "x", PackageID: "nope"})
	require.ErrorIs(t, err, common.ErrPackageNotFound)
	assert.Len(t, s.ListWorkspaces(), 2)

	updated := s.UpdateWorkspace(ctx, w.ID, WorkspacePatch{Name: strPtr("Renamed"), Slug: strPtr("")})
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "green-ways-crew", updated.Slug)

	updated = s.UpdateWorkspace(ctx, w.ID, WorkspacePatch{Slug: strPtr("New Slug!")})
	assert.Equal(t, "new-slug", updated.Slug)

	assert.Nil(t, s.UpdateWorkspace(ctx, "workspace-missing", WorkspacePatch{}))
}

func TestAssignPackage(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, nil)

	w, err := s.AssignPackage(ctx, SeedWorkspaceID, "package-starter")
	require.NoError(t, err)
	assert.Equal(t, "package-starter", w.PackageID)
	assert.Equal(t, 2, mem.Saves())

	_, err = s.AssignPackage(ctx, SeedWorkspaceID, "package-unknown")
	require.ErrorIs(t, err, common.ErrPackageNotFound)
	assert.Equal(t, "package-starter", s.GetWorkspace(SeedWorkspaceID).PackageID)

	w, err = s.AssignPackage(ctx, "workspace-missing", "package-starter")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.Equal(t, 2, mem.Saves())
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	u, err := s.CreateUser(ctx, UserInput{Email: " Crew@Example.com ", WorkspaceID: SeedWorkspaceID})
	require.NoError(t, err)
	assert.Equal(t, "crew@example.com", u.Email)
	assert.Equal(t, "User", u.Name)
	assert.Equal(t, models.RoleMember, u.Role)

	_, err = s.CreateUser(ctx, UserInput{Email: "CREW@example.com"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = s.CreateUser(ctx, UserInput{Email: "   "})
	require.ErrorIs(t, err, common.ErrEmailRequired)

	assert.Len(t, s.ListUsers(), 2)
}

func TestCreateUser_ConcurrentSignupsKeepEmailsUnique(t *testing.T) {
	s, _ := newTestStore(t, nil)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateUser(context.Background(), UserInput{Email: "race@example.com"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	u, err := s.CreateUser(ctx, UserInput{Email: "a@example.com"})
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, u.ID, UserPatch{Email: strPtr(SeedOwnerEmail)})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	updated, err := s.UpdateUser(ctx, u.ID, UserPatch{Email: strPtr("B@Example.com"), Name: strPtr("Bea")})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", updated.Email)
	assert.Equal(t, "Bea", updated.Name)
	assert.Nil(t, s.GetUserByEmail("a@example.com"))

	// keeping one's own email is not a duplicate
	_, err = s.UpdateUser(ctx, u.ID, UserPatch{Email: strPtr("b@example.com")})
	require.NoError(t, err)

	missing, err := s.UpdateUser(ctx, "user-missing", UserPatch{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateOwnerAccount(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, nil)

	u, w, err := s.CreateOwnerAccount(ctx, OwnerAccountInput{
		Name:         "Dana",
		Email:        "Dana@Example.com",
		PasswordHash: "hash",
		PackageID:    "package-unknown",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Saves())
	assert.Equal(t, "Dana's Workspace", w.Name)
	assert.Equal(t, u.ID, w.OwnerID)
	assert.Equal(t, w.ID, u.WorkspaceID)
	assert.Equal(t, models.RoleOwner, u.Role)
	assert.Equal(t, s.ListPackages()[0].ID, w.PackageID)

	_, _, err = s.CreateOwnerAccount(ctx, OwnerAccountInput{Email: "dana@example.com"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Len(t, s.ListWorkspaces(), 2, "no workspace is left behind by a failed signup")
}

func TestCreateForm_NormalizesFieldsAndSettings(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	f, err := s.CreateForm(ctx, FormInput{
		WorkspaceID: SeedWorkspaceID,
		Name:        "Site Photos",
		Fields: json.RawMessage(`[
			{"id": "logo", "type": "image", "required": true, "imageUrl": "/a.png"},
			"skip-me",
			{"id": "docs", "type": "file", "accepts": "image/png, application/pdf", "multiple": 1},
			{"id": "pics", "type": "image-upload", "custom": "kept"}
		]`),
		Settings: json.RawMessage(`null`),
	})
	require.NoError(t, err)

	assert.Equal(t, "site-photos", f.Slug)
	assert.Equal(t, 1, f.Version)
	assert.Equal(t, models.VisibilityPublic, f.Visibility)
	assert.False(t, f.IsPublished)
	assert.Len(t, f.ShareKey, 8)

	require.Len(t, f.Fields, 3)
	assert.Equal(t, &formschema.ImageSpec{ImageURL: "/a.png", DisplayOnly: true}, f.Fields[0].Image)
	assert.False(t, f.Fields[0].Required)
	assert.Equal(t, &formschema.UploadSpec{Accepts: []string{"image/png", "application/pdf"}, Multiple: true}, f.Fields[1].Upload)
	assert.Equal(t, formschema.DefaultImageAccepts, f.Fields[2].Upload.Accepts)
	assert.Equal(t, map[string]any{"custom": "kept"}, f.Fields[2].Extra)

	if diff := cmp.Diff(formschema.DefaultSettings(), f.Settings); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}

	lenient, err := s.CreateForm(ctx, FormInput{Name: "Loose", Fields: json.RawMessage(`{"id":"x"}`), Visibility: "private"})
	require.NoError(t, err)
	assert.Empty(t, lenient.Fields)
	assert.NotNil(t, lenient.Fields)
	assert.Equal(t, models.VisibilityPrivate, lenient.Visibility)
	assert.Equal(t, SeedWorkspaceID, lenient.WorkspaceID)
}

func TestCreateForm_ShareKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	for i := 0; i < 50; i++ {
		_, err := s.CreateForm(ctx, FormInput{Name: "Form"})
		require.NoError(t, err)
	}

	seen := make(map[string]struct{})
	for _, f := range s.ListForms("") {
		require.NotEmpty(t, f.ShareKey)
		_, dup := seen[f.ShareKey]
		require.False(t, dup, "duplicate share key %q", f.ShareKey)
		seen[f.ShareKey] = struct{}{}
	}
}

func TestCreateForm_ShareKeyExhausted(t *testing.T) {
	s, mem := newTestStore(t, nil, WithIDGen(idgen.NewWithSources(zeroReader{}, 1)))
	saves := mem.Saves()

	_, err := s.CreateForm(context.Background(), FormInput{Name: "Blocked"})
	require.ErrorIs(t, err, common.ErrShareKeyExhausted)
	assert.Len(t, s.ListForms(""), 1)
	assert.Equal(t, saves, mem.Saves())
}

func TestUpdateForm(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, nil)
	before := s.GetForm(SeedFormID)

	updated, err := s.UpdateForm(ctx, SeedFormID, FormPatch{
		Name:       strPtr("Renamed Log"),
		Visibility: strPtr("anything"),
		Fields:     json.RawMessage(`[{"id":"notes","type":"textarea","label":"Notes","required":1}]`),
		Settings:   json.RawMessage(`{"notifications":{"enabled":true,"recipients":[" ops@example.com ",""]}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, updated.Version)
	assert.Equal(t, "Renamed Log", updated.Name)
	assert.Equal(t, before.Slug, updated.Slug, "renaming keeps the slug")
	assert.Equal(t, models.VisibilityPublic, updated.Visibility)
	require.Len(t, updated.Fields, 1)
	assert.True(t, updated.Fields[0].Required)
	assert.True(t, updated.Settings.Notifications.Enabled)
	assert.Equal(t, []string{"ops@example.com"}, updated.Settings.Notifications.Recipients)
	assert.Equal(t, before.Settings.Branding, updated.Settings.Branding, "untouched sections survive")

	again, err := s.UpdateForm(ctx, SeedFormID, FormPatch{Slug: strPtr("Daily Log")})
	require.NoError(t, err)
	assert.Equal(t, before.Version+2, again.Version)
	assert.Equal(t, "daily-log", again.Slug)
	assert.True(t, again.Settings.Notifications.Enabled)
	assert.Equal(t, s.GetFormBySlug("daily-log").ID, SeedFormID)

	saves := mem.Saves()
	_, err = s.UpdateForm(ctx, SeedFormID, FormPatch{Name: strPtr("nope"), Fields: json.RawMessage(`"not-a-list"`)})
	require.ErrorIs(t, err, common.ErrInvalidFields)
	assert.Equal(t, saves, mem.Saves())
	current := s.GetForm(SeedFormID)
	assert.Equal(t, before.Version+2, current.Version)
	assert.Equal(t, "Renamed Log", current.Name)

	missing, err := s.UpdateForm(ctx, "form-missing", FormPatch{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteForm_CascadesSubmissions(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	f, err := s.CreateForm(ctx, FormInput{Name: "Temp"})
	require.NoError(t, err)
	keep := s.AddSubmission(ctx, SeedFormID, map[string]any{"company": "evergreen"})
	require.NotNil(t, s.AddSubmission(ctx, f.ID, map[string]any{"a": "b"}))

	assert.True(t, s.DeleteForm(ctx, f.ID))
	assert.False(t, s.DeleteForm(ctx, f.ID))
	assert.Nil(t, s.GetForm(f.ID))
	assert.Empty(t, s.ListSubmissions(f.ID))
	assert.NotNil(t, s.GetSubmission(keep.ID))

	assert.Nil(t, s.AddSubmission(ctx, f.ID, map[string]any{}), "orphans are refused")
}

func TestSubmissionScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	w, err := s.CreateWorkspace(ctx, WorkspaceInput{Name: "W"})
	require.NoError(t, err)
	u, err := s.CreateUser(ctx, UserInput{Email: "u@example.com", Role: models.RoleOwner, WorkspaceID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, w.ID, u.WorkspaceID)

	f, err := s.CreateForm(ctx, FormInput{
		WorkspaceID: w.ID,
		Name:        "F",
		Fields:      json.RawMessage(`[{"id":"name","type":"text","label":"Name","required":true}]`),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, formschema.MissingRequired(f.Fields, map[string]any{}))
	data := map[string]any{"name": "x"}
	require.Empty(t, formschema.MissingRequired(f.Fields, data))

	sub := s.AddSubmission(ctx, f.ID, data)
	require.NotNil(t, sub)
	data["name"] = "mutated"

	assert.Equal(t, 1, s.GetSubmissionCount(f.ID))
	recent := s.ListRecentSubmissions(0)
	require.NotEmpty(t, recent)
	assert.Equal(t, sub.ID, recent[0].ID)
	assert.Equal(t, "x", recent[0].Data["name"])

	at, ok := s.GetLastSubmissionAt(f.ID)
	assert.True(t, ok)
	assert.Equal(t, fixedISO, at)

	summaries := s.ListFormsSummary(w.ID)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].SubmissionCount)
	require.NotNil(t, summaries[0].LastSubmissionAt)
	assert.Equal(t, fixedISO, *summaries[0].LastSubmissionAt)

	assert.True(t, s.DeleteSubmission(ctx, sub.ID))
	assert.False(t, s.DeleteSubmission(ctx, sub.ID))
	_, ok = s.GetLastSubmissionAt(f.ID)
	assert.False(t, ok)
}

func TestListRecentSubmissions_Limit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	var last *models.Submission
	for i := 0; i < 12; i++ {
		last = s.AddSubmission(ctx, SeedFormID, map[string]any{"i": i})
	}
	assert.Len(t, s.ListRecentSubmissions(-1), DefaultRecentLimit)
	recent := s.ListRecentSubmissions(3)
	require.Len(t, recent, 3)
	assert.Equal(t, last.ID, recent[0].ID)
	assert.Len(t, s.ListRecentSubmissions(100), 12)
}

func TestRegenerateShareKey(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)

	old := s.GetForm(SeedFormID).ShareKey
	require.NotNil(t, s.GetFormByShareKey(old))

	f, err := s.RegenerateShareKey(ctx, SeedFormID)
	require.NoError(t, err)
	assert.NotEqual(t, old, f.ShareKey)
	assert.Nil(t, s.GetFormByShareKey(old))
	assert.Equal(t, SeedFormID, s.GetFormByShareKey(f.ShareKey).ID)
	assert.Nil(t, s.GetFormByShareKey(""))

	missing, err := s.RegenerateShareKey(ctx, "form-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadsReturnCopies(t *testing.T) {
	s, _ := newTestStore(t, nil)

	f := s.GetForm(SeedFormID)
	f.Name = "changed"
	f.Fields[0].Label = "changed"
	f.Settings.Notifications.Recipients = append(f.Settings.Notifications.Recipients, "x@example.com")

	again := s.GetForm(SeedFormID)
	assert.NotEqual(t, "changed", again.Name)
	assert.NotEqual(t, "changed", again.Fields[0].Label)
	assert.Empty(t, again.Settings.Notifications.Recipients)
}
