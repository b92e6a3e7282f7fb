package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/http/handlers"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
)

// ---------- Mocks ----------

type mockAuthSvc struct {
	token    string
	loginErr error
}

func (m *mockAuthSvc) Register(_ context.Context, _ *service.RegisterRequest) (*domain.User, error) {
	return nil, nil
}

func (m *mockAuthSvc) Login(_ context.Context, _, _ string) (*domain.User, error) {
	return nil, nil
}

func (m *mockAuthSvc) AdminLogin(_ context.Context, _, _ string) (string, error) {
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.token, nil
}

type mockRoomRepo struct {
	rooms      map[int64]*domain.Room
	lastStatus domain.RoomStatus
}

func newMockRoomRepo(rooms ...*domain.Room) *mockRoomRepo {
	m := &mockRoomRepo{rooms: make(map[int64]*domain.Room)}
	for _, rm := range rooms {
		m.rooms[rm.ID] = rm
	}
	return m
}

func (m *mockRoomRepo) FindByID(_ context.Context, id int64) (*domain.Room, error) {
	return m.rooms[id], nil
}

func (m *mockRoomRepo) List(_ context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(m.rooms))
	for _, rm := range m.rooms {
		out = append(out, *rm)
	}
	return out, nil
}

func (m *mockRoomRepo) ListByStatus(_ context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	var out []domain.Room
	for _, rm := range m.rooms {
		if rm.Status == status {
			out = append(out, *rm)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) UpdateStatus(_ context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	rm, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	rm.Status = status
	m.lastStatus = status
	return rm, nil
}

type mockPublisher struct {
	subjects []string
	payloads []interface{}
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ---------- Helpers ----------

func newAdminRouter(t *testing.T, authSvc service.AuthService, reservations service.ReservationService, rooms *mockRoomRepo) (chi.Router, *config.Config, *mockPublisher) {
	t.Helper()
	cfg := config.Load()
	bus := &mockPublisher{}
	r := chi.NewRouter()
	r.Mount("/admin/api", handlers.NewAdminHandler(authSvc, reservations, rooms, bus, cfg).Routes())
	return r, cfg, bus
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := auth.NewAdminToken("owner@casamarela.local", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAdminToken: %v", err)
	}
	return token
}

func doJSON(r http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// ---------- Tests ----------

func TestAdminLoginReturnsToken(t *testing.T) {
	r, _, _ := newAdminRouter(t, &mockAuthSvc{token: "signed-token"}, &mockReservationSvc{}, newMockRoomRepo())

	rec := doJSON(r, http.MethodPost, "/admin/api/login", "", map[string]string{
		"email": "owner@casamarela.local", "password": "secret",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token != "signed-token" {
		t.Errorf("expected token in response, got %q", out.Token)
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	r, _, _ := newAdminRouter(t, &mockAuthSvc{loginErr: domain.ErrInvalidCredentials}, &mockReservationSvc{}, newMockRoomRepo())

	rec := doJSON(r, http.MethodPost, "/admin/api/login", "", map[string]string{
		"email": "owner@casamarela.local", "password": "wrong",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	r, _, _ := newAdminRouter(t, &mockAuthSvc{}, &mockReservationSvc{}, newMockRoomRepo(testRoom()))

	rec := doJSON(r, http.MethodGet, "/admin/api/rooms", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(r, http.MethodGet, "/admin/api/rooms", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestAdminRoutesRejectGuestTokens(t *testing.T) {
	r, cfg, _ := newAdminRouter(t, &mockAuthSvc{}, &mockReservationSvc{}, newMockRoomRepo(testRoom()))

	// A manage token is a valid JWT but carries the wrong role.
	token, err := auth.NewManageToken("ana@example.com", "1A2B3C4D", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewManageToken: %v", err)
	}

	rec := doJSON(r, http.MethodGet, "/admin/api/rooms", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin role, got %d", rec.Code)
	}
}

func TestAdminListsRoomsAndReservations(t *testing.T) {
	svc := &mockReservationSvc{list: []domain.Reservation{
		{ID: 1, Code: "1A2B3C4D", Status: domain.ReservationConfirmed},
	}}
	r, cfg, _ := newAdminRouter(t, &mockAuthSvc{}, svc, newMockRoomRepo(testRoom()))
	token := adminToken(t, cfg)

	rec := doJSON(r, http.MethodGet, "/admin/api/rooms", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rooms: expected 200, got %d", rec.Code)
	}
	var rooms []domain.Room
	if err := json.NewDecoder(rec.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "Garden Suite" {
		t.Errorf("unexpected rooms payload: %+v", rooms)
	}

	rec = doJSON(r, http.MethodGet, "/admin/api/reservations?limit=10", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reservations: expected 200, got %d", rec.Code)
	}
	var reservations []domain.Reservation
	if err := json.NewDecoder(rec.Body).Decode(&reservations); err != nil {
		t.Fatalf("decode reservations: %v", err)
	}
	if len(reservations) != 1 || reservations[0].Code != "1A2B3C4D" {
		t.Errorf("unexpected reservations payload: %+v", reservations)
	}
}

func TestAdminUpdatesRoomStatus(t *testing.T) {
	rooms := newMockRoomRepo(testRoom())
	r, cfg, bus := newAdminRouter(t, &mockAuthSvc{}, &mockReservationSvc{}, rooms)
	token := adminToken(t, cfg)

	rec := doJSON(r, http.MethodPut, "/admin/api/rooms/7/status", token, map[string]string{"status": "maintenance"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rooms.lastStatus != domain.RoomMaintenance {
		t.Errorf("expected status persisted, got %q", rooms.lastStatus)
	}
	if len(bus.subjects) != 1 || bus.subjects[0] != "room.status.changed" {
		t.Errorf("expected room status event published, got %v", bus.subjects)
	}

	rec = doJSON(r, http.MethodPut, "/admin/api/rooms/7/status", token, map[string]string{"status": "on-fire"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}

	rec = doJSON(r, http.MethodPut, "/admin/api/rooms/999/status", token, map[string]string{"status": "available"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", rec.Code)
	}
}
