package domain

import "time"

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCanceled  ReservationStatus = "canceled"
	ReservationCompleted ReservationStatus = "completed"
)

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(s) {
	case ReservationConfirmed, ReservationCanceled, ReservationCompleted:
		return ReservationStatus(s), true
	default:
		return "", false
	}
}

type Reservation struct {
	ID         int64             `json:"id"`
	Code       string            `json:"code"`
	GuestID    int64             `json:"guest_id"`
	RoomID     int64             `json:"room_id"`
	GuestCount int               `json:"guest_count"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Status     ReservationStatus `json:"status"`
	TotalCents int64             `json:"total_cents"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Nights is the billed night count: the stay length in whole days, rounded up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// StayTotalCents prices a stay: nights times the room's nightly rate.
func StayTotalCents(checkIn, checkOut time.Time, nightlyRateCents int64) int64 {
	return int64(Nights(checkIn, checkOut)) * nightlyRateCents
}
