package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OwnerType is the closed set of parties that can hold a wallet.
type OwnerType string

const (
	OwnerTypeDriver   OwnerType = "driver"
	OwnerTypeVendor   OwnerType = "vendor"
	OwnerTypeCustomer OwnerType = "customer"
)

// ParseOwnerType resolves a raw string into an OwnerType. Resolution happens
// once at the boundary; everything past it works with the typed value.
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(s) {
	case OwnerTypeDriver, OwnerTypeVendor, OwnerTypeCustomer:
		return OwnerType(s), nil
	}
	return "", fmt.Errorf("unknown owner type %q", s)
}

// Wallet is a party's running balance in centavos. The balance column is a
// cache over the wallet's movement history: every credit/debit updates both
// inside the same database transaction, so the invariant
// balance == sum(signed movement amounts) holds at all times.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	OwnerType OwnerType `json:"owner_type"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Balance   int64     `json:"balance"` // centavos, never negative
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
