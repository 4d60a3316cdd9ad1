package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	"github.com/gofiber/fiber/v2"
)

type paymentWaiter interface {
	Wait(ctx context.Context, orderID int64) (*models.PaymentResult, error)
}

type PaymentHandler struct {
	paymentPoller paymentWaiter
	orderRepo     services.OrderReader
}

func NewPaymentHandler(paymentPoller paymentWaiter, orderRepo services.OrderReader) *PaymentHandler {
	return &PaymentHandler{paymentPoller: paymentPoller, orderRepo: orderRepo}
}

// WaitForPayment blocks until the order settles or polling gives up. Members
// may only wait on their own orders; anyone else's order answers 404.
func (h *PaymentHandler) WaitForPayment(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	account, member := memberAccount(c)
	if member {
		order, err := h.orderRepo.PaymentOrder(c.UserContext(), orderID)
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		case err != nil:
			slog.Error("Error loading payment order", "order_id", orderID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check payment"})
		case !ownsOrder(order, account):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
	}

	result, err := h.paymentPoller.Wait(c.UserContext(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"error": "Request cancelled"})
		default:
			slog.Error("Error waiting for payment", "order_id", orderID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check payment"})
		}
	}

	if member && result.Order != nil && !ownsOrder(result.Order, account) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}

	status := fiber.StatusOK
	if result.Outcome == models.OutcomeTimeout {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(result)
}

func ownsOrder(order *models.PaymentOrder, account string) bool {
	return order != nil && account != "" && strings.TrimSpace(order.Account) == account
}
