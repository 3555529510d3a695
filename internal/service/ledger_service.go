package service

import (
	"context"
	"fmt"
	"time"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService: the direct wallet
// operations (deposit, withdrawal) that run outside order settlement.
type LedgerServiceImpl struct {
	walletRepo   ports.WalletRepository
	movementRepo ports.MovementRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	movementRepo ports.MovementRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo:   walletRepo,
		movementRepo: movementRepo,
		transactor:   transactor,
		log:          log,
	}
}

// Deposit credits the owner's wallet, creating it on first access.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.WalletOpRequest) (*domain.Movement, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	mv, err := creditWallet(ctx, dbTx, s.walletRepo, s.movementRepo, walletOp{
		ownerType:   req.OwnerType,
		ownerID:     req.OwnerID,
		amount:      req.Amount,
		kind:        domain.MovementTypeDeposit,
		description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("owner_type", string(req.OwnerType)).
		Str("owner_id", req.OwnerID.String()).
		Int64("amount", req.Amount).
		Msg("deposit credited")

	return mv, nil
}

// Withdraw debits the owner's wallet. Fails with InsufficientFunds when the
// amount exceeds the current balance; the balance is never clamped.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WalletOpRequest) (*domain.Movement, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	mv, err := debitWallet(ctx, dbTx, s.walletRepo, s.movementRepo, walletOp{
		ownerType:   req.OwnerType,
		ownerID:     req.OwnerID,
		amount:      req.Amount,
		kind:        domain.MovementTypeWithdrawal,
		description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("owner_type", string(req.OwnerType)).
		Str("owner_id", req.OwnerID.String()).
		Int64("amount", req.Amount).
		Msg("withdrawal debited")

	return mv, nil
}

// walletOp carries the parameters of a single tx-scoped ledger mutation.
type walletOp struct {
	ownerType   domain.OwnerType
	ownerID     uuid.UUID
	amount      int64
	kind        domain.MovementType
	description string
}

// creditWallet locks (or lazily creates) the owner's wallet, appends an
// in-movement and refreshes the cached balance. Movement append and balance
// update share the caller's transaction, which is what keeps the balance
// recomputable from the ledger at every commit point.
func creditWallet(
	ctx context.Context,
	tx pgx.Tx,
	walletRepo ports.WalletRepository,
	movementRepo ports.MovementRepository,
	op walletOp,
) (*domain.Movement, error) {
	if op.amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := walletRepo.GetOrCreateForUpdate(ctx, tx, op.ownerType, op.ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	mv := &domain.Movement{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Type:        op.kind,
		Amount:      op.amount,
		Direction:   domain.DirectionIn,
		Description: op.description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := movementRepo.Create(ctx, tx, mv); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append movement: %w", err))
	}

	if err := walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance+op.amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	return mv, nil
}

// debitWallet locks the owner's wallet, verifies funds, appends an
// out-movement and refreshes the cached balance in the caller's transaction.
func debitWallet(
	ctx context.Context,
	tx pgx.Tx,
	walletRepo ports.WalletRepository,
	movementRepo ports.MovementRepository,
	op walletOp,
) (*domain.Movement, error) {
	if op.amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := walletRepo.GetOrCreateForUpdate(ctx, tx, op.ownerType, op.ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	if wallet.Balance < op.amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	mv := &domain.Movement{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		Type:        op.kind,
		Amount:      op.amount,
		Direction:   domain.DirectionOut,
		Description: op.description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := movementRepo.Create(ctx, tx, mv); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append movement: %w", err))
	}

	if err := walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance-op.amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	return mv, nil
}
