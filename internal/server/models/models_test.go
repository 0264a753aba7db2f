package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_CloneIsDeep(t *testing.T) {
	var f Form
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"form-1","visibility":"public","isPublished":true,"shareKey":"abc",
		"fields":[{"id":"photos","type":"image-upload","accepts":["image/png"]}],
		"settings":{"notifications":{"recipients":["a@b.c"],"enabled":true}}
	}`), &f))

	c := f.Clone()
	c.Fields[0].Upload.Accepts[0] = "changed"
	c.Settings.Notifications.Recipients[0] = "changed"

	assert.Equal(t, "image/png", f.Fields[0].Upload.Accepts[0])
	assert.Equal(t, "a@b.c", f.Settings.Notifications.Recipients[0])
	assert.True(t, f.IsShared())
}

func TestForm_IsShared(t *testing.T) {
	assert.False(t, Form{IsPublished: true, Visibility: VisibilityPrivate, ShareKey: "k"}.IsShared())
	assert.False(t, Form{IsPublished: false, Visibility: VisibilityPublic, ShareKey: "k"}.IsShared())
	assert.False(t, Form{IsPublished: true, Visibility: VisibilityPublic}.IsShared())
}

func TestState_CloneNeverNil(t *testing.T) {
	s := State{}.Clone()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workspaces":[],"forms":[],"submissions":[],"users":[],"packages":[]}`, string(b))
}

func TestUser_PublicDropsHash(t *testing.T) {
	u := User{ID: "u", Email: "a@b.c", PasswordHash: "secret"}
	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "passwordHash")
	assert.Equal(t, "a@b.c", u.Public().Email)
	assert.Equal(t, "secret", u.PasswordHash)
}

func TestPackage_CloneCopiesLimits(t *testing.T) {
	limit := 5
	p := Package{FormLimit: &limit}
	c := p.Clone()
	*c.FormLimit = 10
	assert.Equal(t, 5, *p.FormLimit)
	assert.Nil(t, c.SubmissionLimit)
}
