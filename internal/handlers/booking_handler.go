package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/appstate"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	"github.com/gofiber/fiber/v2"
)

type conflictLoader interface {
	Load(ctx context.Context, account string, session services.UserInfoSource) (*services.ConflictIndex, error)
}

type BookingHandler struct {
	conflictService conflictLoader
	stateStore      appstate.Store
}

func NewBookingHandler(conflictService conflictLoader, stateStore appstate.Store) *BookingHandler {
	return &BookingHandler{conflictService: conflictService, stateStore: stateStore}
}

// CheckConflicts reports whether an account already holds a booking at the
// requested slot. Members are always checked against their own account. Staff
// name the account explicitly or fall back to the session profile; with
// neither, every account's bookings are indexed.
func (h *BookingHandler) CheckConflicts(c *fiber.Ctx) error {
	date := strings.TrimSpace(c.Query("date"))
	slot := strings.TrimSpace(c.Query("time"))
	if date == "" || slot == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date and time are required"})
	}
	var capacity *int
	if raw := strings.TrimSpace(c.Query("capacity")); raw != "" {
		value, err := parseNonNegativeInt(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "capacity must be a valid non-negative integer"})
		}
		capacity = &value
	}

	account := strings.TrimSpace(c.Query("account"))
	if own, member := memberAccount(c); member {
		if own == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Token has no account"})
		}
		account = own
	}

	var session services.UserInfoSource
	if sessionID := strings.TrimSpace(c.Get(SessionHeader)); sessionID != "" && h.stateStore != nil {
		session = appstate.NewSession(h.stateStore, sessionID)
	}

	index, err := h.conflictService.Load(c.UserContext(), account, session)
	if index == nil {
		index = services.NewConflictIndex(account, nil)
	}
	response := fiber.Map{
		"account": index.Account,
		"slot":    index.Availability(date, slot, capacity),
	}
	if err != nil {
		slog.Warn("Booking conflict index incomplete", "account", index.Account, "error", err)
		response["partial"] = true
	}
	return c.JSON(response)
}
