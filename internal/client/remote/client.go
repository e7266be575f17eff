// Package remote implements the device's view of the backend: a typed HTTP
// client for the API and a WebSocket subscriber for the realtime change feed.
package remote

import (
	"context"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
)

// LoginResult is the payload of a successful login call.
type LoginResult struct {
	User        *models.User `json:"user"`
	SessionID   string       `json:"sessionId"`
	AccessToken string       `json:"accessToken"`
}

// UploadRequest carries one document upload.
type UploadRequest struct {
	Name     string
	Filename string
	Content  []byte
}

// Client is everything the device core needs from the backend. GetSession
// and UpdateSession back the session guard; the rest serves the document
// cache and the CLI.
type Client interface {
	Close() error

	Login(ctx context.Context, email string, password []byte) (*LoginResult, error)

	// GetSession point-reads the account's authoritative session token.
	GetSession(ctx context.Context, userID string) (string, error)
	// UpdateSession point-writes the session marker. Advisory: callers
	// treat failure as non-fatal.
	UpdateSession(ctx context.Context, userID string, sessionID string) error

	ListDocuments(ctx context.Context) ([]*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error)
	UploadDocument(ctx context.Context, req UploadRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// FetchBlob retrieves raw bytes from a durable URL (cache warming and
	// foreground preview fetches).
	FetchBlob(ctx context.Context, url string) ([]byte, error)

	ListRooms(ctx context.Context) ([]*models.Room, error)
	ListMeetings(ctx context.Context) ([]*models.Meeting, error)
}
