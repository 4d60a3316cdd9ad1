package handlers

import (
	"errors"
	"log/slog"

	"github.com/Sign-up-admin/safe-room-sub007/internal/apiclient"
	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/gofiber/fiber/v2"
)

const businessErrorCode = 500

var errInvalidNumber = errors.New("invalid number")

func envelopeOK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"code": 0, "msg": "success", "data": data})
}

// envelopeReject answers with HTTP 200 and a non-zero code, which clients
// treat as a business rule rejection.
func envelopeReject(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"code": businessErrorCode, "msg": msg})
}

func envelopeStatus(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"code": status, "msg": msg})
}

func envelopeError(c *fiber.Ctx, err error) error {
	var businessErr *apiclient.BusinessError
	switch {
	case errors.Is(err, crud.ErrUnknownModule):
		return envelopeStatus(c, fiber.StatusNotFound, "Unknown module")
	case errors.Is(err, crud.ErrNotFound):
		return envelopeStatus(c, fiber.StatusNotFound, "Record not found")
	case errors.Is(err, errNoAccount), errors.Is(err, errNotOwner):
		return envelopeStatus(c, fiber.StatusForbidden, "No permission for this record")
	case errors.Is(err, crud.ErrInvalidInput):
		return envelopeReject(c, "Invalid request")
	case errors.As(err, &businessErr):
		return envelopeReject(c, businessErr.Msg)
	case errors.Is(err, apiclient.ErrNetwork), errors.Is(err, apiclient.ErrServer):
		slog.Error("Module backend unavailable", "path", c.Path(), "error", err)
		return envelopeStatus(c, fiber.StatusBadGateway, "Upstream service unavailable")
	default:
		slog.Error("Module request failed", "path", c.Path(), "error", err)
		return envelopeStatus(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
