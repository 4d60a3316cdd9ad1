package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/events"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

type OrderReader interface {
	PaymentOrder(ctx context.Context, id int64) (*models.PaymentOrder, error)
}

type PollerConfig struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

type PaymentPoller struct {
	orderRepo OrderReader
	publisher events.EventPublisher
	cfg       PollerConfig
}

func NewPaymentPoller(orderRepo OrderReader, publisher events.EventPublisher, cfg PollerConfig) *PaymentPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 60
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PaymentPoller{orderRepo: orderRepo, publisher: publisher, cfg: cfg}
}

// Wait polls the order until it is paid or failed, the attempt budget or
// timeout runs out, or ctx is cancelled. Cancellation of ctx returns its error
// and publishes nothing; every other ending publishes the outcome.
func (p *PaymentPoller) Wait(ctx context.Context, orderID int64) (*models.PaymentResult, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}

	pollCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	result := &models.PaymentResult{OrderID: orderID, Outcome: models.OutcomeTimeout}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Attempts++
		order, err := p.orderRepo.PaymentOrder(pollCtx, orderID)
		switch {
		case errors.Is(err, crud.ErrNotFound):
			return nil, ErrOrderNotFound
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Payment status check failed", "order_id", orderID, "attempt", result.Attempts, "error", err)
		default:
			result.Order = order
			switch order.Status {
			case models.PaymentPaid:
				result.Outcome = models.OutcomeSucceeded
				return p.finish(result), nil
			case models.PaymentFailed:
				result.Outcome = models.OutcomeFailed
				return p.finish(result), nil
			}
		}

		if result.Attempts >= p.cfg.MaxAttempts {
			return p.finish(result), nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return p.finish(result), nil
		case <-ticker.C:
		}
	}
}

func (p *PaymentPoller) finish(result *models.PaymentResult) *models.PaymentResult {
	if err := p.publisher.PublishPaymentOutcome(*result); err != nil {
		slog.Error("Failed to publish payment outcome", "order_id", result.OrderID, "error", err)
	}
	return result
}
