package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPaymentSucceeded = "payment.succeeded"
	SubjectPaymentFailed    = "payment.failed"
	SubjectPaymentTimeout   = "payment.timeout"
)

type EventPublisher interface {
	PublishPaymentOutcome(result models.PaymentResult) error
}

type PaymentOutcomeEvent struct {
	EventID    uuid.UUID             `json:"event_id"`
	EventType  string                `json:"event_type"`
	OrderID    int64                 `json:"order_id"`
	OrderNo    string                `json:"order_no,omitempty"`
	Account    string                `json:"account,omitempty"`
	Amount     float64               `json:"amount,omitempty"`
	Outcome    models.PaymentOutcome `json:"outcome"`
	Attempts   int                   `json:"attempts"`
	OccurredAt time.Time             `json:"occurred_at"`
}

func SubjectFor(outcome models.PaymentOutcome) string {
	switch outcome {
	case models.OutcomeSucceeded:
		return SubjectPaymentSucceeded
	case models.OutcomeFailed:
		return SubjectPaymentFailed
	default:
		return SubjectPaymentTimeout
	}
}

func NewPaymentOutcomeEvent(result models.PaymentResult, now time.Time) PaymentOutcomeEvent {
	event := PaymentOutcomeEvent{
		EventID:    uuid.New(),
		EventType:  SubjectFor(result.Outcome),
		OrderID:    result.OrderID,
		Outcome:    result.Outcome,
		Attempts:   result.Attempts,
		OccurredAt: now.UTC(),
	}
	if result.Order != nil {
		event.OrderNo = result.Order.OrderNo
		event.Account = result.Order.Account
		event.Amount = result.Order.Amount
	}
	return event
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("gym-console"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) PublishPaymentOutcome(result models.PaymentResult) error {
	event := NewPaymentOutcomeEvent(result, time.Now())

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	if err := p.conn.Publish(event.EventType, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", "subject", event.EventType, "error", err)
		return err
	}

	slog.Info("Published payment event", "subject", event.EventType, "order_id", event.OrderID)
	return nil
}

func (p *NatsPublisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Drain()
	}
}

// NoopPublisher only logs outcomes; used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPaymentOutcome(result models.PaymentResult) error {
	slog.Debug("Payment outcome not published", "order_id", result.OrderID, "outcome", result.Outcome)
	return nil
}

// MultiPublisher hands each outcome to every publisher and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishPaymentOutcome(result models.PaymentResult) error {
	var errs []error
	for _, publisher := range m {
		if publisher == nil {
			continue
		}
		if err := publisher.PublishPaymentOutcome(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
