package models

import "time"

// CachedBlob is a locally cached copy of a document's raw bytes, keyed by the
// document id. Its lifecycle is independent of the remote metadata record.
type CachedBlob struct {
	DocumentID  string
	Content     []byte
	ContentType string
	CachedAt    time.Time
}
