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

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

const payoutColumns = `id, order_id, transaction_id, driver_id, vendor_id,
		amount_driver, amount_vendor, amount_platform, status, paid_at, created_at`

// Create inserts a payout within the settlement transaction. The unique
// constraint on order_id is the settlement idempotency guard: a concurrent
// duplicate insert surfaces as ports.ErrDuplicate and the caller re-reads
// the existing payout instead.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `INSERT INTO payouts (id, order_id, transaction_id, driver_id, vendor_id,
			amount_driver, amount_vendor, amount_platform, status, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.OrderID, p.TransactionID, p.DriverID, p.VendorID,
		p.AmountDriver, p.AmountVendor, p.AmountPlatform, p.Status, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("insert payout: %w", ports.ErrDuplicate)
		}
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// GetByOrderID fetches the payout for an order. Returns nil, nil when the
// order has not been settled.
func (r *PayoutRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE order_id = $1`

	p := &domain.Payout{}
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.TransactionID, &p.DriverID, &p.VendorID,
		&p.AmountDriver, &p.AmountVendor, &p.AmountPlatform, &p.Status, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payout by order: %w", err)
	}
	return p, nil
}
