package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/casamarela/innkeeper/pkg/logger"
)

//go:embed templates static
var assets embed.FS

// Base carries the fields every page shares with the layout.
type Base struct {
	Title    string
	AppName  string
	UserName string
}

type RoomsPage struct {
	Base
	Rooms []RoomView
}

type BookingFormPage struct {
	Base
	Room  RoomView
	Guest GuestView
	Error string
}

type ConfirmationPage struct {
	Base
	Reservation ReservationView
	Room        RoomView
	Guest       GuestView
	Payment     PaymentView
}

type LoginPage struct {
	Base
	Email string
	Error string
}

type RegisterPage struct {
	Base
	Name  string
	Email string
	Error string
}

type ErrorPage struct {
	Base
	Message string
}

var pages = []string{
	"rooms.html",
	"booking_form.html",
	"confirmation.html",
	"login.html",
	"register.html",
	"error.html",
}

type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.ParseFS(assets, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data interface{}) {
	t, ok := r.templates[page]
	if !ok {
		logger.Error("Unknown template requested", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		logger.Error("Failed to render template", "page", page, "error", err)
	}
}

// StaticHandler serves the embedded static assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
