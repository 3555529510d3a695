package ports

import (
	"context"
	"time"

	"mercafacil/internal/core/domain"

	"github.com/google/uuid"
)

// SettlementService is the transactional workflow that splits a delivered
// order's payment and credits each party's wallet, exactly once per order.
type SettlementService interface {
	SettleOrder(ctx context.Context, order domain.Order) (*domain.Payout, error)
	GetPayout(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error)
}

// TransactionService records confirmed customer payments as immutable facts.
type TransactionService interface {
	// RecordTransaction is idempotent: re-recording the same payment for an
	// order returns the existing transaction unchanged.
	RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*domain.Transaction, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Transaction, error)
}

// RecordTransactionRequest holds validated input for payment recording.
type RecordTransactionRequest struct {
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	Amount        int64
	PaymentMethod string
}

// LedgerService exposes the direct wallet operations (outside settlement).
type LedgerService interface {
	Deposit(ctx context.Context, req WalletOpRequest) (*domain.Movement, error)
	Withdraw(ctx context.Context, req WalletOpRequest) (*domain.Movement, error)
}

// WalletOpRequest holds validated input for a deposit or withdrawal.
type WalletOpRequest struct {
	OwnerType   domain.OwnerType
	OwnerID     uuid.UUID
	Amount      int64
	Description string
}

// ExtractService is the read side: balance and movement history for an owner.
type ExtractService interface {
	// GetExtract returns a zero balance and empty history for owners with no
	// wallet yet; absence of activity is a valid state, not an error.
	GetExtract(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*Extract, error)
	GetBalance(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (int64, error)
}

// Extract is a wallet statement: cached balance plus full movement history,
// most recent first.
type Extract struct {
	Balance   int64             `json:"balance"`
	Movements []domain.Movement `json:"movements"`
}

// TokenService validates dashboard tokens minted by the identity service.
type TokenService interface {
	Generate(ownerType domain.OwnerType, ownerID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OwnerType domain.OwnerType
	OwnerID   uuid.UUID
}

// PayoutCache is the fast-path idempotency layer in front of the database
// check: a settled order's payout is cached so retries short-circuit without
// touching PostgreSQL. Best-effort only.
type PayoutCache interface {
	Get(ctx context.Context, orderID uuid.UUID) ([]byte, error) // cached payout JSON or nil
	Set(ctx context.Context, orderID uuid.UUID, payoutJSON []byte, ttl time.Duration) error
}
