package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"peopleops/internal/auth"
	"peopleops/internal/domain/identity"
)

type fakeResolver struct {
	principal identity.ResolvedPrincipal
	err       error
}

func (f fakeResolver) Resolve(ctx context.Context, principalID string) (identity.ResolvedPrincipal, error) {
	if f.err != nil {
		return identity.ResolvedPrincipal{}, f.err
	}
	return f.principal, nil
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{PrincipalID: "p1", RoleName: identity.RoleHR}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	resolver := fakeResolver{principal: identity.ResolvedPrincipal{ID: "p1", Role: identity.RoleHR, Status: identity.StatusActive}}
	handler := Auth(secret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.ID != "p1" || user.Role != identity.RoleHR {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareInactiveAccount(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{PrincipalID: "p2", RoleName: identity.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	resolver := fakeResolver{err: identity.ErrAccountInactive}
	handler := Auth(secret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for inactive account")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	ok := false
	handler := RequirePermission("employees.write")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", rec.Code)
	}

	emp := identity.ResolvedPrincipal{ID: "e1", Role: identity.RoleEmployee, Status: identity.StatusActive}
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), emp))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", rec.Code)
	}

	hr := identity.ResolvedPrincipal{ID: "h1", Role: identity.RoleHR, Status: identity.StatusActive}
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), hr))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !ok || rec.Code != http.StatusOK {
		t.Fatalf("expected handler to run for hr, got %d", rec.Code)
	}
}
