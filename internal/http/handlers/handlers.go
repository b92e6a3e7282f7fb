// Package handlers holds the HTTP handlers: server-rendered pages for guests
// and a small JSON API for the admin panel.
package handlers

import (
	"net/http"

	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/config"
)

func pageBase(r *http.Request, cfg *config.Config, title string) web.Base {
	b := web.Base{Title: title, AppName: cfg.App.Name}
	if sess := mw.CurrentSession(r); sess != nil {
		b.UserName = sess.Name
	}
	return b
}

func renderError(w http.ResponseWriter, r *http.Request, renderer *web.Renderer, cfg *config.Config, status int, message string) {
	renderer.Render(w, status, "error.html", web.ErrorPage{
		Base:    pageBase(r, cfg, "Something went wrong"),
		Message: message,
	})
}
