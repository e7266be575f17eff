// Package models defines the records the device client works with: the
// document metadata mirror of the server record and the locally owned
// cached blob.
package models

import (
	"strings"
	"time"
)

// Document mirrors the server-side metadata record. The client never owns
// these; they are fetched from the API or arrive on the change feed.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      string    `json:"size"`
	OwnerID   string    `json:"ownerId"`
	URL       string    `json:"url,omitempty"`
	PageCount int       `json:"pageCount,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document type tags, the same closed set the server uses.
const (
	DocTypePDF   = "pdf"
	DocTypeDoc   = "doc"
	DocTypeXLS   = "xls"
	DocTypePPT   = "ppt"
	DocTypeOther = "other"
)

// TransientURLPrefix marks a client-local reference produced by an offline
// upload. Such a URL is only meaningful on the device that minted it.
const TransientURLPrefix = "local:"

// HasDurableURL reports whether the document points at a fetchable remote
// address rather than nothing or a transient client-local reference.
func (d *Document) HasDurableURL() bool {
	return d.URL != "" && !d.HasTransientURL()
}

// HasTransientURL reports whether the document's URL is a client-local
// reference from an upload that has not durably synced yet.
func (d *Document) HasTransientURL() bool {
	return strings.HasPrefix(d.URL, TransientURLPrefix)
}
