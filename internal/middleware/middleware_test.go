package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newProtectedApp(roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{AuthRequired(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  c.Locals("user_id"),
			"username": c.Locals("username"),
			"role":     c.Locals("role"),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

func requestWithAuth(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequiredSetsLocals(t *testing.T) {
	token, err := utils.GenerateTokenFor("12", "member01", "member", testSecret)
	require.NoError(t, err)

	resp := requestWithAuth(t, newProtectedApp(), "Bearer "+token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequiredRejects(t *testing.T) {
	otherToken, err := utils.GenerateToken("12", "member", "another-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + otherToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := requestWithAuth(t, newProtectedApp(), tt.header)
			defer resp.Body.Close()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	claims := utils.Claims{
		UserID: "12",
		Role:   "member",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := requestWithAuth(t, newProtectedApp(), "Bearer "+token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app := newProtectedApp("admin", "coach")

	for role, want := range map[string]int{
		"admin":  http.StatusOK,
		"coach":  http.StatusOK,
		"member": http.StatusForbidden,
	} {
		token, err := utils.GenerateToken("1", role, testSecret)
		require.NoError(t, err)

		resp := requestWithAuth(t, app, "Bearer "+token)
		resp.Body.Close()
		require.Equal(t, want, resp.StatusCode, role)
	}
}

func TestPrometheusLabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Prometheus())
	app.Get("/orders/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))
	for _, path := range []string{"/orders/1", "/orders/2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}
	after := testutil.ToFloat64(httpRequestTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))

	require.Equal(t, before+2, after)
}
