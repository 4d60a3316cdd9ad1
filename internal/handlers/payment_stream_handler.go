package handlers

import (
	"errors"
	"strings"

	paymentws "github.com/Sign-up-admin/safe-room-sub007/internal/websocket"
	"github.com/Sign-up-admin/safe-room-sub007/pkg/utils"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type PaymentStreamHandler struct {
	hub       *paymentws.Hub
	jwtSecret string
}

func NewPaymentStreamHandler(hub *paymentws.Hub, jwtSecret string) *PaymentStreamHandler {
	return &PaymentStreamHandler{hub: hub, jwtSecret: jwtSecret}
}

// WebSocketAuth reads the token from the token query parameter, falling back
// to the Authorization header.
func (h *PaymentStreamHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	if strings.TrimSpace(claims.Username) == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Token has no account"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *PaymentStreamHandler) HandleWebSocket(conn *websocket.Conn) {
	username, _ := conn.Locals("username").(string)
	client := paymentws.NewClient(h.hub, conn, username)

	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	go client.WritePump()
	client.ReadPump()
}

func (h *PaymentStreamHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
