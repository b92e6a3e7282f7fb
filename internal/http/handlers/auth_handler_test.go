package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/casamarela/innkeeper/internal/domain"
	"github.com/casamarela/innkeeper/internal/http/handlers"
	mw "github.com/casamarela/innkeeper/internal/http/middleware"
	"github.com/casamarela/innkeeper/internal/service"
	"github.com/casamarela/innkeeper/internal/session"
	"github.com/casamarela/innkeeper/internal/web"
	"github.com/casamarela/innkeeper/pkg/config"
)

type authSvcStub struct {
	user        *domain.User
	loginErr    error
	registerErr error
}

func (s *authSvcStub) Register(_ context.Context, _ *service.RegisterRequest) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.user, nil
}

func (s *authSvcStub) Login(_ context.Context, _, _ string) (*domain.User, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.user, nil
}

func (s *authSvcStub) AdminLogin(_ context.Context, _, _ string) (string, error) {
	return "", domain.ErrInvalidCredentials
}

// The session store is only reached after a successful login; error paths can
// run without one.
func newAuthRouter(t *testing.T, svc service.AuthService, sess *session.Data) chi.Router {
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
	passthrough := func(next http.Handler) http.Handler { return next }
	r.Mount("/auth", handlers.NewAuthHandler(svc, nil, renderer, cfg).Routes(passthrough))
	return r
}

func TestLoginPageRedirectsWhenAlreadySignedIn(t *testing.T) {
	r := newAuthRouter(t, &authSvcStub{}, testSession())

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/rooms" {
		t.Errorf("expected redirect to /rooms, got %q", loc)
	}
}

func TestLoginRerendersOnBadCredentials(t *testing.T) {
	r := newAuthRouter(t, &authSvcStub{loginErr: domain.ErrInvalidCredentials}, nil)

	rec := postForm(r, "/auth/login", url.Values{
		"email":    {"ana@example.com"},
		"password": {"wrong"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "invalid email or password") {
		t.Error("expected credential message on login page")
	}
	if !strings.Contains(body, "ana@example.com") {
		t.Error("expected submitted email preserved")
	}
}

func TestRegisterRerendersOnValidationError(t *testing.T) {
	r := newAuthRouter(t, &authSvcStub{registerErr: domain.NewFormError("password must be at least 8 characters")}, nil)

	rec := postForm(r, "/auth/register", url.Values{
		"name":     {"Ana Souza"},
		"email":    {"ana@example.com"},
		"password": {"short"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "password must be at least 8 characters") {
		t.Error("expected validation message on register page")
	}
}

func TestRegisterRerendersWhenEmailTaken(t *testing.T) {
	r := newAuthRouter(t, &authSvcStub{registerErr: domain.ErrEmailTaken}, nil)

	rec := postForm(r, "/auth/register", url.Values{
		"name":     {"Ana Souza"},
		"email":    {"ana@example.com"},
		"password": {"longenough"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "an account with this email already exists") {
		t.Error("expected duplicate email message on register page")
	}
}
