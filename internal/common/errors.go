// Package common defines shared constants and sentinel errors used across
// client and server layers of eCabinet. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Preview/document errors.
	ErrNotSynchronized = errors.New("document not yet synchronized")
	ErrNoPreview       = errors.New("no preview available")
)
