package auth

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is a sign-in vouched for by an external provider.
type Identity struct {
	Email string
	Name  string
}

// IdentityVerifier checks an identity token issued by an external sign-in
// provider.
type IdentityVerifier interface {
	Verify(token string) (*Identity, error)
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HMACIdentityVerifier accepts HS256 identity tokens signed with a secret
// shared with the provider.
type HMACIdentityVerifier struct {
	secret []byte
}

func NewHMACIdentityVerifier(secret string) *HMACIdentityVerifier {
	return &HMACIdentityVerifier{secret: []byte(secret)}
}

func (v *HMACIdentityVerifier) Verify(token string) (*Identity, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidToken
	}
	return &Identity{Email: strings.TrimSpace(claims.Email), Name: strings.TrimSpace(claims.Name)}, nil
}
