package domain

import "time"

// Identity is the authenticated caller, resolved by the session middleware
// and passed explicitly into the workflow.
type Identity struct {
	Email        string
	Name         string
	PasswordHash string
	BirthDate    *time.Time
}

// BookingForm is the parsed reservation form. Dates are midnight-local of the
// submitted calendar days; string fields arrive untrimmed.
type BookingForm struct {
	CheckIn       time.Time
	CheckOut      time.Time
	GuestCount    int
	PaymentMethod string
	Name          string
	NationalID    string
	Phone         string
	Address       string
}
