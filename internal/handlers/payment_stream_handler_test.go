package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	paymentws "github.com/Sign-up-admin/safe-room-sub007/internal/websocket"
	"github.com/Sign-up-admin/safe-room-sub007/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newStreamAuthApp() *fiber.App {
	handler := NewPaymentStreamHandler(paymentws.NewHub(), authTestSecret)
	app := fiber.New()
	app.Get("/ws", handler.WebSocketAuth, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("username").(string))
	})
	return app
}

func upgradeRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	return req
}

func TestWebSocketAuthRequiresUpgrade(t *testing.T) {
	resp, err := newStreamAuthApp().Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestWebSocketAuthChecksToken(t *testing.T) {
	valid, err := utils.GenerateTokenFor("3", "member01", "member", authTestSecret)
	require.NoError(t, err)
	anonymous, err := utils.GenerateToken("3", "member", authTestSecret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "query token", path: "/ws?token=" + valid, wantStatus: http.StatusOK},
		{name: "missing token", path: "/ws", wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/ws?token=nope", wantStatus: http.StatusUnauthorized},
		{name: "token without account", path: "/ws?token=" + anonymous, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newStreamAuthApp().Test(upgradeRequest(tt.path))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
