package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/logger"
)

const formDateLayout = "2006-01-02"

type ReservationHandler struct {
	Service  service.ReservationService
	Renderer *web.Renderer
	Cfg      *config.Config
}

func NewReservationHandler(svc service.ReservationService, renderer *web.Renderer, cfg *config.Config) *ReservationHandler {
	return &ReservationHandler{Service: svc, Renderer: renderer, Cfg: cfg}
}

func (h *ReservationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireLogin)
		r.Get("/new/{roomID}", h.showForm)
		r.Post("/new/{roomID}", h.create)
	})
	r.Get("/{code}", h.view)
	return r
}

func (h *ReservationHandler) showForm(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/rooms", http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, roomID, "")
}

func (h *ReservationHandler) create(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/rooms", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, roomID, "invalid form submission")
		return
	}

	form, parseErr := parseBookingForm(r)
	if parseErr != "" {
		h.renderForm(w, r, roomID, parseErr)
		return
	}

	sess := mw.CurrentSession(r)
	conf, err := h.Service.CreateReservation(r.Context(), roomID, sess.Identity(), form)
	if err != nil {
		if ferr, ok := domain.AsFormError(err); ok {
			h.renderForm(w, r, roomID, ferr.Message)
			return
		}
		if errors.Is(err, domain.ErrRoomUnavailable) {
			http.Redirect(w, r, "/rooms", http.StatusSeeOther)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to create reservation", "error", err, "room_id", roomID)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not complete your reservation, please try again")
		return
	}

	h.renderConfirmation(w, r, "Reservation confirmed", conf)
}

// view serves the manage link from confirmation emails. A manage token scoped
// to the reservation code grants access without a session; a logged-in guest
// can open their own reservations directly.
func (h *ReservationHandler) view(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	conf, err := h.Service.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			renderError(w, r, h.Renderer, h.Cfg, http.StatusNotFound, "reservation not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to load reservation", "error", err, "code", code)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not load this reservation")
		return
	}

	if !h.authorized(r, code, conf.Guest.Email) {
		renderError(w, r, h.Renderer, h.Cfg, http.StatusForbidden, "you do not have access to this reservation")
		return
	}

	h.renderConfirmation(w, r, "Your reservation", conf)
}

func (h *ReservationHandler) authorized(r *http.Request, code, guestEmail string) bool {
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := auth.Parse(token, h.Cfg.Auth.JWTSecret)
		if err == nil && claims.Role == "manage" && claims.Code == code {
			return true
		}
	}
	if sess := mw.CurrentSession(r); sess != nil && strings.EqualFold(sess.Email, guestEmail) {
		return true
	}
	return false
}

// renderForm shows the booking form, prefilled from the guest profile when one
// exists. It re-checks availability so a stale link lands back on the room
// list instead of a form that can never succeed.
func (h *ReservationHandler) renderForm(w http.ResponseWriter, r *http.Request, roomID int64, formError string) {
	sess := mw.CurrentSession(r)

	page, err := h.Service.BookingPage(r.Context(), roomID, sess.Email)
	if err != nil {
		if errors.Is(err, domain.ErrRoomUnavailable) {
			http.Redirect(w, r, "/rooms", http.StatusSeeOther)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to load booking page", "error", err, "room_id", roomID)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not load the booking form")
		return
	}

	guest := web.NewGuestView(page.Guest)
	if guest.Name == "" {
		guest.Name = sess.Name
	}

	h.Renderer.Render(w, http.StatusOK, "booking_form.html", web.BookingFormPage{
		Base:  pageBase(r, h.Cfg, "Book "+page.Room.Name),
		Room:  web.NewRoomView(page.Room),
		Guest: guest,
		Error: formError,
	})
}

func (h *ReservationHandler) renderConfirmation(w http.ResponseWriter, r *http.Request, title string, conf *service.Confirmation) {
	h.Renderer.Render(w, http.StatusOK, "confirmation.html", web.ConfirmationPage{
		Base:        pageBase(r, h.Cfg, title),
		Reservation: web.NewReservationView(conf.Reservation),
		Room:        web.NewRoomView(conf.Room),
		Guest:       web.NewGuestView(conf.Guest),
		Payment:     web.NewPaymentView(conf.Payment),
	})
}

// parseBookingForm turns the posted fields into a BookingForm. A non-empty
// second return value is the message to show above the form.
func parseBookingForm(r *http.Request) (*domain.BookingForm, string) {
	checkIn, err := time.Parse(formDateLayout, r.PostFormValue("checkInDate"))
	if err != nil {
		return nil, "please pick a check-in date"
	}
	checkOut, err := time.Parse(formDateLayout, r.PostFormValue("checkOutDate"))
	if err != nil {
		return nil, "please pick a check-out date"
	}
	guestCount, err := strconv.Atoi(r.PostFormValue("guestCount"))
	if err != nil {
		return nil, "please enter how many guests are staying"
	}
	method := r.PostFormValue("paymentMethod")
	if method == "" {
		return nil, "please choose a payment method"
	}

	return &domain.BookingForm{
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    guestCount,
		PaymentMethod: method,
		Name:          r.PostFormValue("name"),
		NationalID:    r.PostFormValue("nationalId"),
		Phone:         r.PostFormValue("phone"),
		Address:       r.PostFormValue("address"),
	}, ""
}
