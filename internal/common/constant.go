// Package common contains shared constants and sentinel errors used across
// StudyVault components.
package common

// AuthorizationHeader is the HTTP header carrying the bearer access token.
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "
