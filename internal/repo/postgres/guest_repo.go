package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casamarela/innkeeper/internal/domain"
)

type GuestRepository interface {
	Create(ctx context.Context, ng domain.NewGuest) (*domain.Guest, error)
	FindByEmail(ctx context.Context, email string) (*domain.Guest, error)
	FindByID(ctx context.Context, id int64) (*domain.Guest, error)
	Update(ctx context.Context, id int64, patch domain.GuestPatch) (*domain.Guest, error)
}

type guestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

const guestCols = `id, name, email, password_hash, national_id, phone, address, birth_date, registered_at`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(
		&g.ID, &g.Name, &g.Email, &g.PasswordHash,
		&g.NationalID, &g.Phone, &g.Address, &g.BirthDate, &g.RegisteredAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *guestRepository) Create(ctx context.Context, ng domain.NewGuest) (*domain.Guest, error) {
	const q = `INSERT INTO guests (name, email, password_hash, national_id, phone, address, birth_date, registered_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q,
		ng.Name, ng.Email, ng.PasswordHash,
		ng.NationalID, ng.Phone, ng.Address, ng.BirthDate, ng.RegisteredAt,
	))
}

func (r *guestRepository) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q, email))
}

func (r *guestRepository) FindByID(ctx context.Context, id int64) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q, id))
}

// Update applies a partial patch: only non-nil fields reach the SET clause.
func (r *guestRepository) Update(ctx context.Context, id int64, patch domain.GuestPatch) (*domain.Guest, error) {
	sets := []string{}
	args := []interface{}{}
	i := 1

	add := func(col string, val *string) {
		if val != nil {
			sets = append(sets, fmt.Sprintf("%s=$%d", col, i))
			args = append(args, *val)
			i++
		}
	}
	add("name", patch.Name)
	add("national_id", patch.NationalID)
	add("phone", patch.Phone)
	add("address", patch.Address)

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	q := fmt.Sprintf(`UPDATE guests SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), i, guestCols)
	args = append(args, id)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q, args...))
}
