package domain

import (
	"time"

	"github.com/google/uuid"
)

// RevenueSource tags where a platform revenue entry came from.
type RevenueSource string

const (
	RevenueSourceOrderCommission RevenueSource = "order_commission"
)

// PlatformRevenue is an append-only record of the platform's commission
// share for one settled transaction. Never mutated.
type PlatformRevenue struct {
	ID            uuid.UUID     `json:"id"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	Source        RevenueSource `json:"source"`
	Amount        int64         `json:"amount"` // centavos
	CreatedAt     time.Time     `json:"created_at"`
}
