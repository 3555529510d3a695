package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercafacil/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_type, owner_id, balance, created_at, updated_at`

// GetByOwner fetches a wallet by its owner (non-locking read).
// Returns nil, nil if the owner has no wallet yet.
func (r *WalletRepo) GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, ownerType, ownerID).Scan(
		&w.ID, &w.OwnerType, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by owner: %w", err)
	}
	return w, nil
}

// GetOrCreateForUpdate returns the owner's wallet locked FOR UPDATE, creating
// it with balance 0 on first access. This MUST be called within a
// transaction. The unique (owner_type, owner_id) constraint plus the
// insert-then-relock sequence makes concurrent first-access safe: if two
// transactions race, one insert is a no-op and both end up locking the same
// row.
func (r *WalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	lockQuery := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, lockQuery, ownerType, ownerID).Scan(
		&w.ID, &w.OwnerType, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	// First access: create lazily, then lock. ON CONFLICT covers the race
	// where another transaction created the wallet between the two queries.
	now := time.Now().UTC()
	insertQuery := `INSERT INTO wallets (id, owner_type, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (owner_type, owner_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insertQuery, uuid.New(), ownerType, ownerID, now); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	err = tx.QueryRow(ctx, lockQuery, ownerType, ownerID).Scan(
		&w.ID, &w.OwnerType, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock created wallet: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's cached balance within a transaction. The
// caller is responsible for appending the matching movement in the same
// transaction, keeping the balance recomputable from the ledger.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
