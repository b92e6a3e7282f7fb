package service

import (
	"context"
	"fmt"
	"time"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/repo/postgres"
	"github.com/casamarela/innkeeper/pkg/events"
	"github.com/casamarela/innkeeper/pkg/logger"
)

// BookingPage is what the booking form needs: the room being booked and the
// caller's guest profile, when one exists, for prefilled defaults.
type BookingPage struct {
	Room  *domain.Room
	Guest *domain.Guest
}

// Confirmation is the result of a successful booking.
type Confirmation struct {
	Reservation *domain.Reservation
	Payment     *domain.Payment
	Room        *domain.Room
	Guest       *domain.Guest
}

type ReservationService interface {
	// BookingPage loads the form state for a room, or ErrRoomUnavailable
	// when the room is missing or not bookable.
	BookingPage(ctx context.Context, roomID int64, email string) (*BookingPage, error)

	// CreateReservation runs the booking workflow: availability and form
	// validation, guest upsert, then the transactional
	// reservation/payment/room-status creation.
	CreateReservation(ctx context.Context, roomID int64, ident domain.Identity, form *domain.BookingForm) (*Confirmation, error)

	FindByCode(ctx context.Context, code string) (*Confirmation, error)
	ListReservations(ctx context.Context, limit, offset int) ([]domain.Reservation, error)
}

type reservationService struct {
	rooms        postgres.RoomRepository
	guests       postgres.GuestRepository
	reservations postgres.ReservationRepository
	bus          events.Publisher
	now          func() time.Time
}

func NewReservationService(
	rooms postgres.RoomRepository,
	guests postgres.GuestRepository,
	reservations postgres.ReservationRepository,
	bus events.Publisher,
) ReservationService {
	return &reservationService{
		rooms:        rooms,
		guests:       guests,
		reservations: reservations,
		bus:          bus,
		now:          time.Now,
	}
}

func (s *reservationService) BookingPage(ctx context.Context, roomID int64, email string) (*BookingPage, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil || !room.Bookable() {
		return nil, domain.ErrRoomUnavailable
	}

	guest, err := s.guests.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}

	return &BookingPage{Room: room, Guest: guest}, nil
}

func (s *reservationService) CreateReservation(ctx context.Context, roomID int64, ident domain.Identity, form *domain.BookingForm) (*Confirmation, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil || !room.Bookable() {
		return nil, domain.ErrRoomUnavailable
	}

	if !form.CheckIn.Before(form.CheckOut) {
		return nil, domain.NewFormError("check-out date must be after check-in date")
	}
	if form.GuestCount < 1 {
		return nil, domain.NewFormError("at least one guest is required")
	}
	if form.GuestCount > room.Capacity {
		return nil, domain.NewFormError(fmt.Sprintf("this room sleeps at most %d guests", room.Capacity))
	}

	guest, err := s.reconcileGuest(ctx, ident, form)
	if err != nil {
		return nil, err
	}

	total := domain.StayTotalCents(form.CheckIn, form.CheckOut, room.NightlyRateCents)

	reservation, payment, err := s.reservations.CreateConfirmed(ctx, postgres.CreateBookingParams{
		Code:          newBookingCode(s.now()),
		GuestID:       guest.ID,
		RoomID:        room.ID,
		GuestCount:    form.GuestCount,
		CheckIn:       form.CheckIn,
		CheckOut:      form.CheckOut,
		TotalCents:    total,
		PaymentMethod: form.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}
	room.Status = domain.RoomOccupied

	event := events.ReservationCreatedEvent{
		ReservationCode: reservation.Code,
		GuestName:       guest.Name,
		GuestEmail:      guest.Email,
		RoomName:        room.Name,
		CheckIn:         reservation.CheckIn,
		CheckOut:        reservation.CheckOut,
		Nights:          domain.Nights(reservation.CheckIn, reservation.CheckOut),
		GuestCount:      reservation.GuestCount,
		TotalCents:      reservation.TotalCents,
		PaymentMethod:   payment.Method,
		CreatedAt:       reservation.CreatedAt,
	}
	if err := s.bus.Publish(ctx, events.ReservationCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation created event",
			"error", err, "reservation_code", reservation.Code)
	}

	return &Confirmation{
		Reservation: reservation,
		Payment:     payment,
		Room:        room,
		Guest:       guest,
	}, nil
}

// reconcileGuest finds or creates the guest profile for the booking identity.
// A new profile takes the form's optional fields as submitted; an existing
// incomplete profile is backfilled only where values are missing, so repeated
// bookings never clobber data a guest already provided.
func (s *reservationService) reconcileGuest(ctx context.Context, ident domain.Identity, form *domain.BookingForm) (*domain.Guest, error) {
	guest, err := s.guests.FindByEmail(ctx, ident.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}

	if guest == nil {
		logger.DebugContext(ctx, "No guest profile for booking, creating one", "email", ident.Email)
		guest, err = s.guests.Create(ctx, domain.GuestFromBooking(ident, form, s.now()))
		if err != nil {
			return nil, fmt.Errorf("failed to create guest: %w", err)
		}
		return guest, nil
	}

	logger.DebugContext(ctx, "Guest profile found for booking",
		"guest_id", guest.ID, "incomplete", guest.Incomplete())

	if guest.Incomplete() {
		if patch := domain.CompletionPatch(guest, form); !patch.Empty() {
			guest, err = s.guests.Update(ctx, guest.ID, patch)
			if err != nil {
				return nil, fmt.Errorf("failed to update guest: %w", err)
			}
			logger.DebugContext(ctx, "Backfilled guest profile from booking form", "guest_id", guest.ID)
		}
	}

	return guest, nil
}

func (s *reservationService) FindByCode(ctx context.Context, code string) (*Confirmation, error) {
	reservation, err := s.reservations.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if reservation == nil {
		return nil, domain.ErrNotFound
	}

	room, err := s.rooms.FindByID(ctx, reservation.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	guest, err := s.guests.FindByID(ctx, reservation.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}
	payment, err := s.reservations.PaymentForReservation(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	return &Confirmation{Reservation: reservation, Payment: payment, Room: room, Guest: guest}, nil
}

func (s *reservationService) ListReservations(ctx context.Context, limit, offset int) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, limit, offset)
}

// newBookingCode yields a short human-readable booking code.
func newBookingCode(now time.Time) string {
	return fmt.Sprintf("%08X", now.UnixNano()%0x100000000)
}
