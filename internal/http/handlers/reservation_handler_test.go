package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/http/handlers"
	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/internal/session"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
)

// ---------- Mocks ----------

type mockReservationSvc struct {
	page      *service.BookingPage
	pageErr   error
	conf      *service.Confirmation
	createErr error
	findConf  *service.Confirmation
	findErr   error
	list      []domain.Reservation
	listErr   error

	lastRoomID int64
	lastIdent  domain.Identity
	lastForm   *domain.BookingForm
}

func (m *mockReservationSvc) BookingPage(_ context.Context, roomID int64, _ string) (*service.BookingPage, error) {
	m.lastRoomID = roomID
	return m.page, m.pageErr
}

func (m *mockReservationSvc) CreateReservation(_ context.Context, roomID int64, ident domain.Identity, form *domain.BookingForm) (*service.Confirmation, error) {
	m.lastRoomID = roomID
	m.lastIdent = ident
	m.lastForm = form
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.conf, nil
}

func (m *mockReservationSvc) FindByCode(_ context.Context, _ string) (*service.Confirmation, error) {
	return m.findConf, m.findErr
}

func (m *mockReservationSvc) ListReservations(_ context.Context, _, _ int) ([]domain.Reservation, error) {
	return m.list, m.listErr
}

// ---------- Fixtures ----------

func testRoom() *domain.Room {
	return &domain.Room{
		ID:               7,
		Name:             "Garden Suite",
		Description:      "Ground-floor suite.",
		Capacity:         2,
		NightlyRateCents: 18000,
		Status:           domain.RoomAvailable,
	}
}

func testConfirmation() *service.Confirmation {
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	return &service.Confirmation{
		Reservation: &domain.Reservation{
			ID: 1, Code: "1A2B3C4D", GuestID: 5, RoomID: 7,
			GuestCount: 2, CheckIn: checkIn, CheckOut: checkOut,
			Status: domain.ReservationConfirmed, TotalCents: 54000,
		},
		Payment: &domain.Payment{
			ID: 1, ReservationID: 1, Method: "credit_card",
			AmountCents: 54000, Status: domain.PaymentApproved,
		},
		Room: testRoom(),
		Guest: &domain.Guest{
			ID: 5, Name: "Ana Souza", Email: "ana@example.com",
		},
	}
}

func testSession() *session.Data {
	return &session.Data{
		Email:        "ana@example.com",
		Name:         "Ana Souza",
		PasswordHash: "hash",
		Role:         domain.RoleGuest,
	}
}

// newReservationRouter mounts the handler the way the server does, with an
// optional session injected ahead of the routes.
func newReservationRouter(t *testing.T, svc service.ReservationService, sess *session.Data) (chi.Router, *config.Config) {
	t.Helper()

	cfg := config.Load()
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	r := chi.NewRouter()
	if sess != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(mw.WithSession(req.Context(), sess)))
			})
		})
	}
	r.Mount("/reservations", handlers.NewReservationHandler(svc, renderer, cfg).Routes())
	return r, cfg
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func validBookingForm() url.Values {
	return url.Values{
		"checkInDate":   {"2026-09-10"},
		"checkOutDate":  {"2026-09-13"},
		"guestCount":    {"2"},
		"paymentMethod": {"credit_card"},
		"name":          {"Ana Souza"},
	}
}

// ---------- Tests ----------

func TestShowBookingFormRequiresLogin(t *testing.T) {
	svc := &mockReservationSvc{}
	r, _ := newReservationRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/reservations/new/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("expected redirect to /auth/login, got %q", loc)
	}
}

func TestShowBookingFormRendersRoomAndDefaults(t *testing.T) {
	phone := "5511987654321"
	svc := &mockReservationSvc{page: &service.BookingPage{
		Room: testRoom(),
		Guest: &domain.Guest{
			ID: 5, Name: "Ana Souza", Email: "ana@example.com", Phone: &phone,
		},
	}}
	r, _ := newReservationRouter(t, svc, testSession())

	req := httptest.NewRequest(http.MethodGet, "/reservations/new/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Garden Suite") {
		t.Error("expected room name in form page")
	}
	if !strings.Contains(body, "Ana Souza") {
		t.Error("expected guest name prefilled")
	}
	if !strings.Contains(body, "+55 (11) 98765-4321") {
		t.Error("expected formatted phone prefilled")
	}
	if svc.lastRoomID != 7 {
		t.Errorf("expected room 7 requested, got %d", svc.lastRoomID)
	}
}

func TestShowBookingFormRedirectsWhenRoomUnavailable(t *testing.T) {
	svc := &mockReservationSvc{pageErr: domain.ErrRoomUnavailable}
	r, _ := newReservationRouter(t, svc, testSession())

	req := httptest.NewRequest(http.MethodGet, "/reservations/new/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/rooms" {
		t.Errorf("expected redirect to /rooms, got %q", loc)
	}
}

func TestCreateReservationRendersConfirmation(t *testing.T) {
	svc := &mockReservationSvc{conf: testConfirmation()}
	r, _ := newReservationRouter(t, svc, testSession())

	rec := postForm(r, "/reservations/new/7", validBookingForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "1A2B3C4D") {
		t.Error("expected booking code in confirmation")
	}
	if !strings.Contains(body, "540.00") {
		t.Error("expected total in confirmation")
	}

	if svc.lastIdent.Email != "ana@example.com" {
		t.Errorf("expected session identity passed through, got %q", svc.lastIdent.Email)
	}
	if svc.lastForm.GuestCount != 2 || svc.lastForm.PaymentMethod != "credit_card" {
		t.Errorf("unexpected parsed form: %+v", svc.lastForm)
	}
}

func TestCreateReservationRerendersOnValidationError(t *testing.T) {
	svc := &mockReservationSvc{
		page:      &service.BookingPage{Room: testRoom()},
		createErr: domain.NewFormError("this room sleeps at most 2 guests"),
	}
	r, _ := newReservationRouter(t, svc, testSession())

	form := validBookingForm()
	form.Set("guestCount", "4")
	rec := postForm(r, "/reservations/new/7", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "this room sleeps at most 2 guests") {
		t.Error("expected validation message on re-rendered form")
	}
}

func TestCreateReservationRerendersOnBadDate(t *testing.T) {
	svc := &mockReservationSvc{page: &service.BookingPage{Room: testRoom()}}
	r, _ := newReservationRouter(t, svc, testSession())

	form := validBookingForm()
	form.Set("checkInDate", "not-a-date")
	rec := postForm(r, "/reservations/new/7", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "please pick a check-in date") {
		t.Error("expected date message on re-rendered form")
	}
	if svc.lastForm != nil {
		t.Error("service must not be called when the form does not parse")
	}
}

func TestCreateReservationRedirectsWhenRoomTaken(t *testing.T) {
	svc := &mockReservationSvc{createErr: domain.ErrRoomUnavailable}
	r, _ := newReservationRouter(t, svc, testSession())

	rec := postForm(r, "/reservations/new/7", validBookingForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/rooms" {
		t.Errorf("expected redirect to /rooms, got %q", loc)
	}
}

func TestViewReservationWithManageToken(t *testing.T) {
	svc := &mockReservationSvc{findConf: testConfirmation()}
	r, cfg := newReservationRouter(t, svc, nil)

	token, err := auth.NewManageToken("ana@example.com", "1A2B3C4D", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewManageToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/reservations/1A2B3C4D?token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "1A2B3C4D") {
		t.Error("expected booking code on manage page")
	}
}

func TestViewReservationTokenScopedToCode(t *testing.T) {
	svc := &mockReservationSvc{findConf: testConfirmation()}
	r, cfg := newReservationRouter(t, svc, nil)

	// Token issued for a different reservation must not open this one.
	token, err := auth.NewManageToken("ana@example.com", "FFFFFFFF", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewManageToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/reservations/1A2B3C4D?token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestViewReservationForOwnSession(t *testing.T) {
	svc := &mockReservationSvc{findConf: testConfirmation()}
	r, _ := newReservationRouter(t, svc, testSession())

	req := httptest.NewRequest(http.MethodGet, "/reservations/1A2B3C4D", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestViewReservationNotFound(t *testing.T) {
	svc := &mockReservationSvc{findErr: domain.ErrNotFound}
	r, _ := newReservationRouter(t, svc, testSession())

	req := httptest.NewRequest(http.MethodGet, "/reservations/DEADBEEF", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
