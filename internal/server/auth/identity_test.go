package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signIdentity(t *testing.T, secret string, email, name string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl))},
		Email:            email,
		Name:             name,
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestHMACIdentityVerifier(t *testing.T) {
	v := NewHMACIdentityVerifier("provider-secret")

	id, err := v.Verify(signIdentity(t, "provider-secret", " sky@example.com ", "Sky", time.Minute))
	require.NoError(t, err)
	assert.Equal(t, &Identity{Email: "sky@example.com", Name: "Sky"}, id)

	_, err = v.Verify(signIdentity(t, "other", "sky@example.com", "", time.Minute))
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = v.Verify(signIdentity(t, "provider-secret", "sky@example.com", "", -time.Minute))
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestHMACIdentityVerifier_RequiresExpiry(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{Email: "a@b.c"})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewHMACIdentityVerifier("k").Verify(s)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
