package models

// Room is a bookable meeting room.
type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Status     string   `json:"status"`
	Facilities []string `json:"facilities"`
}

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)
