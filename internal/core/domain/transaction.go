package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a recorded payment.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction records a confirmed customer payment for exactly one order.
// It is created once by the payment-confirmation collaborator and is
// immutable after confirmation; settlement treats it as a fact.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       uuid.UUID         `json:"order_id"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	Amount        int64             `json:"amount"` // centavos
	PaymentMethod string            `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// IsConfirmed reports whether the payment is settlement-eligible.
func (t *Transaction) IsConfirmed() bool {
	return t.Status == TransactionStatusConfirmed
}

// Matches reports whether a re-submission carries the same payment fact.
// A mismatch means the caller is trying to record a different payment under
// the same order, which is rejected rather than silently deduplicated.
func (t *Transaction) Matches(customerID uuid.UUID, amount int64) bool {
	return t.CustomerID == customerID && t.Amount == amount
}
