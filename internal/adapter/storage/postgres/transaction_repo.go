package postgres

import (
	"context"
	"errors"
	"fmt"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a recorded payment. The unique constraint on order_id
// guarantees at most one transaction per order; a duplicate insert surfaces
// as ports.ErrDuplicate.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, order_id, customer_id, amount, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.OrderID, t.CustomerID, t.Amount, t.PaymentMethod, t.Status, t.CreatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("insert transaction: %w", ports.ErrDuplicate)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByOrderID fetches the recorded payment for an order.
// Returns nil, nil when none exists.
func (r *TransactionRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, order_id, customer_id, amount, payment_method, status, created_at
		FROM transactions WHERE order_id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&t.ID, &t.OrderID, &t.CustomerID, &t.Amount, &t.PaymentMethod, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by order: %w", err)
	}
	return t, nil
}
