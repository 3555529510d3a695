package postgres

import (
	"context"
	"fmt"

	"mercafacil/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MovementRepo implements ports.MovementRepository. Movements are
// append-only: this repository exposes no update or delete.
type MovementRepo struct {
	pool Pool
}

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(pool Pool) *MovementRepo {
	return &MovementRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction.
func (r *MovementRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.Movement) error {
	query := `INSERT INTO movements (id, wallet_id, type, amount, direction, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.WalletID, m.Type, m.Amount, m.Direction, m.Description, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByWallet returns a wallet's movements, most recent first.
func (r *MovementRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Movement, error) {
	query := `SELECT id, wallet_id, type, amount, direction, description, created_at
		FROM movements WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		var m domain.Movement
		if err := rows.Scan(&m.ID, &m.WalletID, &m.Type, &m.Amount, &m.Direction, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}

// SumSigned recomputes a wallet's balance from its movement history:
// in-amounts minus out-amounts. Used by reconciliation checks against the
// cached balance column.
func (r *MovementRepo) SumSigned(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END), 0)
		FROM movements WHERE wallet_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
