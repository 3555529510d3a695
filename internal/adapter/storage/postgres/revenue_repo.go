package postgres

import (
	"context"
	"fmt"

	"mercafacil/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PlatformRevenueRepo implements ports.PlatformRevenueRepository.
// Revenue entries are append-only.
type PlatformRevenueRepo struct {
	pool Pool
}

// NewPlatformRevenueRepo creates a new PlatformRevenueRepo.
func NewPlatformRevenueRepo(pool Pool) *PlatformRevenueRepo {
	return &PlatformRevenueRepo{pool: pool}
}

// Create inserts a commission record within the settlement transaction.
func (r *PlatformRevenueRepo) Create(ctx context.Context, tx pgx.Tx, rev *domain.PlatformRevenue) error {
	query := `INSERT INTO platform_revenues (id, transaction_id, source, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, rev.ID, rev.TransactionID, rev.Source, rev.Amount, rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert platform revenue: %w", err)
	}
	return nil
}
