package domain

import "time"

type PaymentStatus string

const (
	// PaymentApproved is set unconditionally on booking: there is no payment
	// gateway, payments are recorded for bookkeeping only.
	PaymentApproved PaymentStatus = "approved"
	PaymentRefunded PaymentStatus = "refunded"
)

type Payment struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservation_id"`
	Method        string        `json:"method"`
	AmountCents   int64         `json:"amount_cents"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}
