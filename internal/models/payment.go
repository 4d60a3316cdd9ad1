package models

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentOrder struct {
	ID      int64         `json:"id"`
	OrderNo string        `json:"order_no"`
	Account string        `json:"account"`
	Amount  float64       `json:"amount"`
	Status  PaymentStatus `json:"status"`
}

type PaymentOutcome string

const (
	OutcomeSucceeded PaymentOutcome = "succeeded"
	OutcomeFailed    PaymentOutcome = "failed"
	OutcomeTimeout   PaymentOutcome = "timeout"
)

type PaymentResult struct {
	OrderID  int64          `json:"order_id"`
	Outcome  PaymentOutcome `json:"outcome"`
	Attempts int            `json:"attempts"`
	Order    *PaymentOrder  `json:"order,omitempty"`
}
