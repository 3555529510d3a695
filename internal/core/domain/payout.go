package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the lifecycle state of a settlement record.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// Payout marks that a specific order has been settled: the order total was
// split and each party's wallet credited. Exactly one Payout exists per
// settled order — the unique order reference is the idempotency anchor that
// makes re-running settlement a no-op.
type Payout struct {
	ID             uuid.UUID    `json:"id"`
	OrderID        uuid.UUID    `json:"order_id"`
	TransactionID  uuid.UUID    `json:"transaction_id"`
	DriverID       uuid.UUID    `json:"driver_id"`
	VendorID       uuid.UUID    `json:"vendor_id"`
	AmountDriver   int64        `json:"amount_driver"`   // centavos
	AmountVendor   int64        `json:"amount_vendor"`   // centavos
	AmountPlatform int64        `json:"amount_platform"` // centavos
	Status         PayoutStatus `json:"status"`
	PaidAt         *time.Time   `json:"paid_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
