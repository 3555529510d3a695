package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementType tags what a ledger entry represents.
type MovementType string

const (
	MovementTypeCashback   MovementType = "cashback"
	MovementTypePayout     MovementType = "payout"
	MovementTypeWithdrawal MovementType = "withdrawal"
	MovementTypeDeposit    MovementType = "deposit"
	MovementTypePurchase   MovementType = "purchase"
)

// Direction indicates whether a movement adds to or removes from a wallet.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Movement is one immutable, append-only ledger entry against a wallet.
// Movements are never updated or deleted.
type Movement struct {
	ID          uuid.UUID    `json:"id"`
	WalletID    uuid.UUID    `json:"wallet_id"`
	Type        MovementType `json:"type"`
	Amount      int64        `json:"amount"` // centavos, always positive
	Direction   Direction    `json:"direction"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}

// SignedAmount returns the amount with the sign implied by direction.
func (m *Movement) SignedAmount() int64 {
	if m.Direction == DirectionOut {
		return -m.Amount
	}
	return m.Amount
}
