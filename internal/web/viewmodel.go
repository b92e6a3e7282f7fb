package web

import (
	"fmt"
	"time"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/phonefmt"
)

// GuestView is the only guest shape templates ever see. Placeholder national
// IDs are suppressed here so internal bookkeeping values cannot leak into a
// rendered page.
type GuestView struct {
	Name       string
	Email      string
	NationalID string
	Phone      string
	PhoneFlag  string
	Address    string
}

func NewGuestView(g *domain.Guest) GuestView {
	if g == nil {
		return GuestView{PhoneFlag: phonefmt.GlobePlaceholder}
	}

	v := GuestView{
		Name:       g.Name,
		Email:      g.Email,
		NationalID: g.DisplayNationalID(),
		PhoneFlag:  phonefmt.GlobePlaceholder,
	}
	if g.Phone != nil && *g.Phone != "" {
		v.Phone = phonefmt.Format(*g.Phone)
		v.PhoneFlag = phonefmt.FlagForNumber(*g.Phone)
	}
	if g.Address != nil {
		v.Address = *g.Address
	}
	return v
}

type RoomView struct {
	ID          int64
	Name        string
	Description string
	Capacity    int
	NightlyRate string
	Status      string
	Bookable    bool
}

func NewRoomView(r *domain.Room) RoomView {
	return RoomView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		NightlyRate: Money(r.NightlyRateCents),
		Status:      string(r.Status),
		Bookable:    r.Bookable(),
	}
}

func NewRoomViews(rooms []domain.Room) []RoomView {
	out := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		out = append(out, NewRoomView(&rooms[i]))
	}
	return out
}

type ReservationView struct {
	Code       string
	CheckIn    string
	CheckOut   string
	Nights     int
	GuestCount int
	Total      string
	Status     string
}

func NewReservationView(res *domain.Reservation) ReservationView {
	return ReservationView{
		Code:       res.Code,
		CheckIn:    res.CheckIn.Format("Jan 2, 2006"),
		CheckOut:   res.CheckOut.Format("Jan 2, 2006"),
		Nights:     domain.Nights(res.CheckIn, res.CheckOut),
		GuestCount: res.GuestCount,
		Total:      Money(res.TotalCents),
		Status:     string(res.Status),
	}
}

type PaymentView struct {
	Method string
	Amount string
	Status string
}

func NewPaymentView(p *domain.Payment) PaymentView {
	if p == nil {
		return PaymentView{}
	}
	return PaymentView{
		Method: p.Method,
		Amount: Money(p.AmountCents),
		Status: string(p.Status),
	}
}

// Money renders cents as a plain decimal amount.
func Money(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// FormDate renders a time for a date input's value attribute.
func FormDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
