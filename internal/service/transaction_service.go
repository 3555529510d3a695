package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionServiceImpl implements ports.TransactionService: it records
// confirmed customer payments as immutable facts, one per order.
type TransactionServiceImpl struct {
	txRepo ports.TransactionRepository
	log    zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(txRepo ports.TransactionRepository, log zerolog.Logger) *TransactionServiceImpl {
	return &TransactionServiceImpl{txRepo: txRepo, log: log}
}

// RecordTransaction records a confirmed payment for an order. Re-recording
// the same payment is idempotent and returns the existing transaction;
// recording a conflicting payment (different amount or customer) for an
// already-recorded order fails with DuplicateTransaction.
func (s *TransactionServiceImpl) RecordTransaction(ctx context.Context, req ports.RecordTransactionRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	existing, err := s.txRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing transaction: %w", err))
	}
	if existing != nil {
		return s.resolveExisting(existing, req)
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		OrderID:       req.OrderID,
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.TransactionStatusConfirmed,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			// Lost the race to a concurrent recording of the same order.
			winner, readErr := s.txRepo.GetByOrderID(ctx, req.OrderID)
			if readErr != nil {
				return nil, apperror.InternalError(fmt.Errorf("re-read transaction: %w", readErr))
			}
			if winner == nil {
				return nil, apperror.InternalError(fmt.Errorf("transaction vanished after duplicate insert for order %s", req.OrderID))
			}
			return s.resolveExisting(winner, req)
		}
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("order_id", req.OrderID.String()).
		Int64("amount", req.Amount).
		Str("method", req.PaymentMethod).
		Msg("payment recorded")

	return txn, nil
}

// resolveExisting applies the idempotency policy: same fact in, existing row
// out; a different fact under the same order is a conflict.
func (s *TransactionServiceImpl) resolveExisting(existing *domain.Transaction, req ports.RecordTransactionRequest) (*domain.Transaction, error) {
	if !existing.Matches(req.CustomerID, req.Amount) {
		return nil, apperror.ErrDuplicateTransaction()
	}
	return existing, nil
}

// GetByOrderID returns the recorded payment for an order.
func (s *TransactionServiceImpl) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}
