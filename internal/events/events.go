// Package events defines the wire format of the realtime change feed shared
// by the server hub and the client subscriber.
package events

import "encoding/json"

// Event kinds delivered over the feed.
const (
	KindSubscribed      = "subscribed"
	KindUserUpdated     = "user_updated"
	KindDocumentCreated = "document_created"
	KindDocumentUpdated = "document_updated"
	KindDocumentDeleted = "document_deleted"
	KindMeetingChanged  = "meeting_changed"
)

// Event is one message on the change feed. Body holds the affected record
// (or is empty for lifecycle messages like "subscribed").
type Event struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Marshal builds an Event with body encoded from v.
func Marshal(kind string, v any) ([]byte, error) {
	var body json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = b
	}
	return json.Marshal(Event{Kind: kind, Body: body})
}
