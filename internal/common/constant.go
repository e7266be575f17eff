// Package common contains shared constants and sentinel errors used across
// eCabinet components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// WSTokenQueryParam is the query parameter carrying the access token on the
// realtime WebSocket endpoint, where custom headers are awkward for clients.
const WSTokenQueryParam = "token"
