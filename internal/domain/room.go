package domain

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

func ParseRoomStatus(s string) (RoomStatus, bool) {
	switch RoomStatus(s) {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return RoomStatus(s), true
	default:
		return "", false
	}
}

type Room struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Capacity         int        `json:"capacity"`
	NightlyRateCents int64      `json:"nightly_rate_cents"`
	Status           RoomStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Bookable reports whether the room can accept a new reservation.
func (r *Room) Bookable() bool {
	return r.Status == RoomAvailable
}
