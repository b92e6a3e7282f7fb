// Package session is a Redis-backed session store. The cookie carries only a
// random session ID; the identity lives server-side with a TTL.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/pkg/config"
)

type Data struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"password_hash"`
	Role         string     `json:"role"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
}

// Identity is the per-request identity value handed to the booking workflow.
func (d *Data) Identity() domain.Identity {
	return domain.Identity{
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		BirthDate:    d.BirthDate,
	}
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(cfg config.RedisConfig, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB

	return &Store{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Client exposes the underlying connection for other Redis-backed concerns
// (rate limiting shares it).
func (s *Store) Client() *redis.Client { return s.client }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.client.Close() }

func key(sid string) string { return "session:" + sid }

func (s *Store) Create(ctx context.Context, d *Data) (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	sid := uuid.NewString()
	if err := s.client.Set(ctx, key(sid), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sid, nil
}

// Get loads a session and slides its expiry. Unknown or expired IDs return
// nil without error.
func (s *Store) Get(ctx context.Context, sid string) (*Data, error) {
	payload, err := s.client.Get(ctx, key(sid)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var d Data
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if err := s.client.Expire(ctx, key(sid), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to refresh session expiry: %w", err)
	}
	return &d, nil
}

func (s *Store) Destroy(ctx context.Context, sid string) error {
	return s.client.Del(ctx, key(sid)).Err()
}
