package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casamarela/innkeeper/internal/domain"
)

// CreateBookingParams is everything the transactional booking insert needs.
type CreateBookingParams struct {
	Code          string
	GuestID       int64
	RoomID        int64
	GuestCount    int
	CheckIn       time.Time
	CheckOut      time.Time
	TotalCents    int64
	PaymentMethod string
}

type ReservationRepository interface {
	// CreateConfirmed inserts the reservation and its payment and flips the
	// room to occupied in one transaction. The room update is conditional on
	// the room still being available; losing that race aborts the whole
	// transaction with domain.ErrRoomUnavailable.
	CreateConfirmed(ctx context.Context, p CreateBookingParams) (*domain.Reservation, *domain.Payment, error)
	FindByCode(ctx context.Context, code string) (*domain.Reservation, error)
	PaymentForReservation(ctx context.Context, reservationID int64) (*domain.Payment, error)
	List(ctx context.Context, limit, offset int) ([]domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

const reservationCols = `id, code, guest_id, room_id, guest_count, check_in, check_out, status, total_cents, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.Code, &res.GuestID, &res.RoomID, &res.GuestCount,
		&res.CheckIn, &res.CheckOut, &res.Status, &res.TotalCents,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) CreateConfirmed(ctx context.Context, p CreateBookingParams) (*domain.Reservation, *domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	const insertReservation = `INSERT INTO reservations
(code, guest_id, room_id, guest_count, check_in, check_out, status, total_cents)
VALUES ($1,$2,$3,$4,$5,$6,'confirmed',$7)
RETURNING ` + reservationCols

	res, err := scanReservation(tx.QueryRow(ctx, insertReservation,
		p.Code, p.GuestID, p.RoomID, p.GuestCount, p.CheckIn, p.CheckOut, p.TotalCents,
	))
	if err != nil {
		return nil, nil, err
	}

	const insertPayment = `INSERT INTO payments (reservation_id, method, amount_cents, status)
VALUES ($1,$2,$3,'approved')
RETURNING id, reservation_id, method, amount_cents, status, created_at`

	var pay domain.Payment
	if err := tx.QueryRow(ctx, insertPayment, res.ID, p.PaymentMethod, p.TotalCents).Scan(
		&pay.ID, &pay.ReservationID, &pay.Method, &pay.AmountCents, &pay.Status, &pay.CreatedAt,
	); err != nil {
		return nil, nil, err
	}

	const occupyRoom = `UPDATE rooms SET status='occupied', updated_at=now()
WHERE id=$1 AND status='available'`

	tag, err := tx.Exec(ctx, occupyRoom, p.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if tag.RowsAffected() == 0 {
		// Another booking took the room between the availability check and
		// this update.
		return nil, nil, domain.ErrRoomUnavailable
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return res, &pay, nil
}

func (r *reservationRepository) FindByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE code=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanReservation(r.pool.QueryRow(ctx, q, code))
}

func (r *reservationRepository) PaymentForReservation(ctx context.Context, reservationID int64) (*domain.Payment, error) {
	const q = `SELECT id, reservation_id, method, amount_cents, status, created_at
FROM payments WHERE reservation_id=$1 ORDER BY created_at DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var pay domain.Payment
	err := r.pool.QueryRow(ctx, q, reservationID).Scan(
		&pay.ID, &pay.ReservationID, &pay.Method, &pay.AmountCents, &pay.Status, &pay.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pay, nil
}

func (r *reservationRepository) List(ctx context.Context, limit, offset int) ([]domain.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + reservationCols + ` FROM reservations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID, &res.Code, &res.GuestID, &res.RoomID, &res.GuestCount,
			&res.CheckIn, &res.CheckOut, &res.Status, &res.TotalCents,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
