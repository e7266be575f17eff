// Package models defines the server-side records persisted in Postgres.
package models

// User is an account record. CurrentSessionID carries the token of the most
// recent successful login; it is overwritten, never appended, so at most one
// session is authoritative per account at any time.
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	Department       string `json:"department"`
	CurrentSessionID string `json:"current_session_id,omitempty"`

	// Credential material, never serialized.
	Salt     []byte `json:"-"`
	Verifier []byte `json:"-"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)
