package models

// User is the device-side view of an account record. Credential material
// never leaves the server.
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	Department       string `json:"department"`
	CurrentSessionID string `json:"current_session_id,omitempty"`
}

// Room and Meeting mirror the server schedule records; the client only
// lists them.
type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Status     string   `json:"status"`
	Facilities []string `json:"facilities"`
}

type Meeting struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	RoomID       string   `json:"roomId"`
	HostID       string   `json:"hostId"`
	Date         string   `json:"date"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Status       string   `json:"status"`
	Participants int      `json:"participants"`
	DocumentIDs  []string `json:"documentIds,omitempty"`
}
