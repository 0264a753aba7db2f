// Package common contains shared constants and sentinel errors used across
// formvault components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// AuthCookieName is the HTTP cookie that carries the access token for
// browser sessions.
const AuthCookieName = "token"

// DurationMinutesKey is the computed submission attribute holding the
// elapsed time between the configured start and end fields.
const DurationMinutesKey = "__durationMinutes"
