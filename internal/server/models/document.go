package models

import "time"

// Document is the metadata record for a stored file. URL is empty until the
// blob has been durably uploaded to object storage; clients that uploaded
// offline may hold a transient local reference instead.
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

// Document type tags form a small closed set; anything unrecognised is "other".
const (
	DocTypePDF   = "pdf"
	DocTypeDoc   = "doc"
	DocTypeXLS   = "xls"
	DocTypePPT   = "ppt"
	DocTypeOther = "other"
)
