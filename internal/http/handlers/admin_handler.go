package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/http/response"
	"github.com/casamarela/innkeeper/internal/repo/postgres"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/events"
	"github.com/casamarela/innkeeper/pkg/logger"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

// AdminHandler is the JSON API behind the admin panel. Everything except
// login requires a bearer token with the admin role.
type AdminHandler struct {
	Auth         service.AuthService
	Reservations service.ReservationService
	Rooms        postgres.RoomRepository
	Bus          events.Publisher
	Cfg          *config.Config
}

func NewAdminHandler(authSvc service.AuthService, reservations service.ReservationService, rooms postgres.RoomRepository, bus events.Publisher, cfg *config.Config) *AdminHandler {
	return &AdminHandler{Auth: authSvc, Reservations: reservations, Rooms: rooms, Bus: bus, Cfg: cfg}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/reservations", h.listReservations)
		r.Get("/rooms", h.listRooms)
		r.Put("/rooms/{id}/status", h.updateRoomStatus)
	})
	return r
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var in adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	token, err := h.Auth.AdminLogin(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		logger.ErrorContext(r.Context(), "Admin login failed", "error", err)
		response.InternalError(w, "login failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, adminLoginResponse{Token: token})
}

func (h *AdminHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(w, "missing bearer token")
			return
		}

		claims, err := auth.Parse(strings.TrimPrefix(header, "Bearer "), h.Cfg.Auth.JWTSecret)
		if err != nil || claims.Role != domain.RoleAdmin {
			response.Unauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) listReservations(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultAdminPageSize)
	if limit < 1 || limit > maxAdminPageSize {
		limit = defaultAdminPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reservations, err := h.Reservations.ListReservations(r.Context(), limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list reservations", "error", err)
		response.InternalError(w, "failed to list reservations")
		return
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	response.WriteJSON(w, http.StatusOK, reservations)
}

func (h *AdminHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list rooms", "error", err)
		response.InternalError(w, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	response.WriteJSON(w, http.StatusOK, rooms)
}

type roomStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) updateRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid room id")
		return
	}

	var in roomStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	status, ok := domain.ParseRoomStatus(in.Status)
	if !ok {
		response.BadRequest(w, "status must be 'available', 'occupied' or 'maintenance'")
		return
	}

	current, err := h.Rooms.FindByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load room", "error", err, "room_id", id)
		response.InternalError(w, "failed to update room")
		return
	}
	if current == nil {
		response.NotFound(w, "room not found")
		return
	}

	room, err := h.Rooms.UpdateStatus(r.Context(), id, status)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update room status", "error", err, "room_id", id)
		response.InternalError(w, "failed to update room")
		return
	}
	if room == nil {
		response.NotFound(w, "room not found")
		return
	}

	event := events.RoomStatusChangedEvent{
		RoomID:    room.ID,
		OldStatus: string(current.Status),
		NewStatus: string(room.Status),
		ChangedAt: time.Now(),
	}
	if err := h.Bus.Publish(r.Context(), events.RoomStatusChanged, event); err != nil {
		logger.ErrorContext(r.Context(), "Failed to publish room status event", "error", err, "room_id", id)
	}

	logger.InfoContext(r.Context(), "Room status updated", "room_id", id, "status", status)
	response.WriteJSON(w, http.StatusOK, room)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
