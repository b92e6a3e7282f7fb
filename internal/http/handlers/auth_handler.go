package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/internal/session"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/logger"
)

type AuthHandler struct {
	Service  service.AuthService
	Sessions *session.Store
	Renderer *web.Renderer
	Cfg      *config.Config
}

func NewAuthHandler(svc service.AuthService, sessions *session.Store, renderer *web.Renderer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Service: svc, Sessions: sessions, Renderer: renderer, Cfg: cfg}
}

// Routes wires the auth pages. The limiter guards the credential POSTs only;
// pages render unthrottled.
func (h *AuthHandler) Routes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.showLogin)
	r.Get("/register", h.showRegister)
	r.With(limiter).Post("/login", h.login)
	r.With(limiter).Post("/register", h.register)
	r.Post("/logout", h.logout)
	return r
}

func (h *AuthHandler) showLogin(w http.ResponseWriter, r *http.Request) {
	if mw.CurrentSession(r) != nil {
		http.Redirect(w, r, "/rooms", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, http.StatusOK, "login.html", web.LoginPage{
		Base: pageBase(r, h.Cfg, "Sign in"),
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Renderer.Render(w, http.StatusOK, "login.html", web.LoginPage{
			Base:  pageBase(r, h.Cfg, "Sign in"),
			Error: "invalid form submission",
		})
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.Service.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.Renderer.Render(w, http.StatusOK, "login.html", web.LoginPage{
				Base:  pageBase(r, h.Cfg, "Sign in"),
				Email: email,
				Error: "invalid email or password",
			})
			return
		}
		logger.ErrorContext(r.Context(), "Login failed", "error", err)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not sign you in, please try again")
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not sign you in, please try again")
		return
	}
	http.Redirect(w, r, "/rooms", http.StatusSeeOther)
}

func (h *AuthHandler) showRegister(w http.ResponseWriter, r *http.Request) {
	if mw.CurrentSession(r) != nil {
		http.Redirect(w, r, "/rooms", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, http.StatusOK, "register.html", web.RegisterPage{
		Base: pageBase(r, h.Cfg, "Create account"),
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Renderer.Render(w, http.StatusOK, "register.html", web.RegisterPage{
			Base:  pageBase(r, h.Cfg, "Create account"),
			Error: "invalid form submission",
		})
		return
	}

	req := &service.RegisterRequest{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if raw := r.PostFormValue("birthDate"); raw != "" {
		if bd, err := time.Parse(formDateLayout, raw); err == nil {
			req.BirthDate = &bd
		}
	}

	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		msg := ""
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			msg = "an account with this email already exists"
		default:
			if ferr, ok := domain.AsFormError(err); ok {
				msg = ferr.Message
			}
		}
		if msg != "" {
			h.Renderer.Render(w, http.StatusOK, "register.html", web.RegisterPage{
				Base:  pageBase(r, h.Cfg, "Create account"),
				Name:  req.Name,
				Email: req.Email,
				Error: msg,
			})
			return
		}
		logger.ErrorContext(r.Context(), "Registration failed", "error", err)
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not create your account, please try again")
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		renderError(w, r, h.Renderer, h.Cfg, http.StatusInternalServerError, "we could not sign you in, please try again")
		return
	}
	http.Redirect(w, r, "/rooms", http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.Cfg.Auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.Sessions.Destroy(r.Context(), cookie.Value); err != nil {
			logger.ErrorContext(r.Context(), "Failed to destroy session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.Auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// startSession stores the identity server-side and hands the browser the
// session ID cookie. The credential hash rides along because guest profiles
// are created lazily at booking time.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	sid, err := h.Sessions.Create(r.Context(), &session.Data{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		BirthDate:    user.BirthDate,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create session", "error", err)
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.Auth.SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.Cfg.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
