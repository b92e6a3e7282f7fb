package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casamarela/innkeeper/internal/domain"
)

type RoomRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error)
}

type roomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepository{pool: pool}
}

const roomCols = `id, name, description, capacity, nightly_rate_cents, status, created_at, updated_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.Description, &rm.Capacity,
		&rm.NightlyRateCents, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRoom(r.pool.QueryRow(ctx, q, id))
}

func (r *roomRepository) List(ctx context.Context) ([]domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms ORDER BY name`
	return r.list(ctx, q)
}

func (r *roomRepository) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE status=$1 ORDER BY name`
	return r.list(ctx, q, status)
}

func (r *roomRepository) list(ctx context.Context, q string, args ...interface{}) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(
			&rm.ID, &rm.Name, &rm.Description, &rm.Capacity,
			&rm.NightlyRateCents, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	const q = `UPDATE rooms SET status=$2, updated_at=now() WHERE id=$1 RETURNING ` + roomCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRoom(r.pool.QueryRow(ctx, q, id, status))
}
