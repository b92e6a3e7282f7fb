package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/repo/postgres"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/logger"
)

type RoomHandler struct {
	Rooms    postgres.RoomRepository
	Renderer *web.Renderer
	Cfg      *config.Config
}

func NewRoomHandler(rooms postgres.RoomRepository, renderer *web.Renderer, cfg *config.Config) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Renderer: renderer, Cfg: cfg}
}

func (h *RoomHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

// Home sends the root path to the room listing.
func (h *RoomHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/rooms", http.StatusFound)
}

func (h *RoomHandler) list(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list rooms", "error", err)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not load the room list")
		return
	}

	h.Renderer.Render(w, http.StatusOK, "rooms.html", web.RoomsPage{
		Base:  pageBase(r, h.Cfg, "Rooms"),
		Rooms: web.NewRoomViews(rooms),
	})
}
