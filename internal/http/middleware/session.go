package middleware

import (
	"context"
	"net/http"

	"github.com/casamarela/innkeeper/internal/session"
	"github.com/casamarela/innkeeper/pkg/logger"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// SessionLoader resolves the session cookie into a session.Data value on the
// request context. Missing or expired sessions pass through as anonymous.
func SessionLoader(store *session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			data, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				logger.ErrorContext(r.Context(), "Failed to load session", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSession(r.Context(), data)
			ctx = context.WithValue(ctx, logger.GuestKey, data.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession returns a context carrying the given session data.
func WithSession(ctx context.Context, d *session.Data) context.Context {
	return context.WithValue(ctx, sessionCtxKey, d)
}

// CurrentSession returns the session loaded by SessionLoader, or nil.
func CurrentSession(r *http.Request) *session.Data {
	if v := r.Context().Value(sessionCtxKey); v != nil {
		if d, ok := v.(*session.Data); ok {
			return d
		}
	}
	return nil
}

// RequireLogin bounces anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentSession(r) == nil {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
