package ports

import (
	"context"
	"errors"

	"mercafacil/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicate is returned by repository Create methods when an insert hits a
// unique constraint. Services use it to fall back to reading the existing row
// instead of treating the race as a failure.
var ErrDuplicate = errors.New("duplicate key")

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks and take a row-level
// lock on the wallet, serializing concurrent balance mutations.
type WalletRepository interface {
	GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error)
	// GetOrCreateForUpdate returns the owner's wallet locked FOR UPDATE,
	// creating it with balance 0 on first access. Safe under concurrent
	// first-access thanks to the unique (owner_type, owner_id) constraint.
	GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// MovementRepository defines persistence for the append-only ledger entries.
// There is deliberately no update or delete.
type MovementRepository interface {
	Create(ctx context.Context, tx pgx.Tx, m *domain.Movement) error
	// ListByWallet returns movements most recent first.
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Movement, error)
	// SumSigned recomputes the balance from the movement history
	// (in-amounts minus out-amounts), for reconciliation checks.
	SumSigned(ctx context.Context, walletID uuid.UUID) (int64, error)
}

// TransactionRepository defines persistence for recorded payments.
type TransactionRepository interface {
	// Create inserts a transaction; returns ErrDuplicate if one already
	// exists for the same order.
	Create(ctx context.Context, t *domain.Transaction) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Transaction, error)
}

// PayoutRepository defines persistence for settlement records. The unique
// order reference on payouts is the concurrency guard for idempotent
// settlement: a duplicate insert fails and the caller re-reads instead.
type PayoutRepository interface {
	// Create inserts a payout inside the settlement transaction; returns
	// ErrDuplicate if the order is already settled.
	Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error)
}

// PlatformRevenueRepository defines persistence for commission records.
type PlatformRevenueRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *domain.PlatformRevenue) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
