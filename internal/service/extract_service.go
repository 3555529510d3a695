package service

import (
	"context"
	"fmt"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"

	"github.com/google/uuid"
)

// ExtractServiceImpl implements ports.ExtractService: the read side of the
// ledger. It has no write access.
type ExtractServiceImpl struct {
	walletRepo   ports.WalletRepository
	movementRepo ports.MovementRepository
}

// NewExtractService creates a new ExtractServiceImpl.
func NewExtractService(walletRepo ports.WalletRepository, movementRepo ports.MovementRepository) *ExtractServiceImpl {
	return &ExtractServiceImpl{walletRepo: walletRepo, movementRepo: movementRepo}
}

// GetExtract returns the owner's balance and movement history, most recent
// first. An owner with no wallet yet gets a zero balance and an empty
// history — absence of activity is a valid state, never an error.
func (s *ExtractServiceImpl) GetExtract(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*ports.Extract, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return &ports.Extract{Balance: 0, Movements: []domain.Movement{}}, nil
	}

	movements, err := s.movementRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list movements: %w", err))
	}

	return &ports.Extract{Balance: wallet.Balance, Movements: movements}, nil
}

// GetBalance returns the owner's current balance; zero if no wallet exists.
func (s *ExtractServiceImpl) GetBalance(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (int64, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}
