package models

// Meeting links a host and a room to a scheduled time slot.
// DocumentIDs reference documents shared into the meeting.
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

const (
	MeetingUpcoming  = "upcoming"
	MeetingOngoing   = "ongoing"
	MeetingFinished  = "finished"
	MeetingCancelled = "cancelled"
)
