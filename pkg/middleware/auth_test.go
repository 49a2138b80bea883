package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/service/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() (*config.Jwt, *auth.Service) {
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"}
	return cfg, auth.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func guardedApp(roles ...domain.Role) (*fiber.App, *auth.Service) {
	cfg, svc := newAuth()
	app := fiber.New()
	chain := []fiber.Handler{JwtProtected(cfg, svc)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.UserID.String())
	})
	app.Get("/", chain...)
	return app, svc
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestProtected_MissingSession(t *testing.T) {
	app, _ := guardedApp()
	resp := get(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtected_NonBearerHeader(t *testing.T) {
	app, _ := guardedApp()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProtected_InvalidToken(t *testing.T) {
	app, _ := guardedApp()
	resp := get(t, app, "not.a.token")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtected_ForeignSignature(t *testing.T) {
	app, _ := guardedApp()
	other := auth.New(&config.Jwt{Secret: "other", Expiry: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	token, err := other.GenerateToken(domain.Identity{UserID: uuid.New(), Role: domain.RoleDonor})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, token).StatusCode)
}

func TestProtected_StoresIdentity(t *testing.T) {
	app, svc := guardedApp()
	id := domain.Identity{UserID: uuid.New(), Email: "a@example.com", Role: domain.RoleDonor}
	token, err := svc.GenerateToken(id)
	require.NoError(t, err)
	resp := get(t, app, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, id.UserID.String(), string(body))
}

func TestRequireRole(t *testing.T) {
	app, svc := guardedApp(domain.RoleAdmin)

	tests := []struct {
		name string
		role domain.Role
		want int
	}{
		{"admin allowed", domain.RoleAdmin, fiber.StatusOK},
		{"donor forbidden", domain.RoleDonor, fiber.StatusForbidden},
		{"no role forbidden", "", fiber.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := svc.GenerateToken(domain.Identity{UserID: uuid.New(), Role: tc.role})
			require.NoError(t, err)
			assert.Equal(t, tc.want, get(t, app, token).StatusCode)
		})
	}
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	resp := get(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJwtError_Malformed(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("Missing or malformed JWT"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no header: expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("non-bearer header: expected %d, got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}
