package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const payoutCacheTTL = 24 * time.Hour

// SettlementServiceImpl implements ports.SettlementService.
//
// Settlement is anchored on payout existence rather than order status: the
// unique order reference on payouts doubles as the concurrency guard, so
// re-invoking the whole pipeline is idempotent no matter which step failed
// on a previous attempt.
type SettlementServiceImpl struct {
	payoutRepo   ports.PayoutRepository
	revenueRepo  ports.PlatformRevenueRepository
	txRepo       ports.TransactionRepository
	walletRepo   ports.WalletRepository
	movementRepo ports.MovementRepository
	payoutCache  ports.PayoutCache
	transactor   ports.DBTransactor
	rates        domain.SplitRates
	timeout      time.Duration
	log          zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	payoutRepo ports.PayoutRepository,
	revenueRepo ports.PlatformRevenueRepository,
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	movementRepo ports.MovementRepository,
	payoutCache ports.PayoutCache,
	transactor ports.DBTransactor,
	rates domain.SplitRates,
	timeout time.Duration,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		payoutRepo:   payoutRepo,
		revenueRepo:  revenueRepo,
		txRepo:       txRepo,
		walletRepo:   walletRepo,
		movementRepo: movementRepo,
		payoutCache:  payoutCache,
		transactor:   transactor,
		rates:        rates,
		timeout:      timeout,
		log:          log,
	}
}

// SettleOrder splits a delivered order's payment into vendor, driver and
// platform shares, credits each party's wallet plus the customer's cashback,
// and records the platform commission — all inside one database transaction.
// Calling it again for the same order is a no-op success returning the
// existing payout.
func (s *SettlementServiceImpl) SettleOrder(ctx context.Context, order domain.Order) (*domain.Payout, error) {
	// Preconditions. The order subsystem enforces the delivery transition
	// before invoking settlement; these checks are defensive.
	if !order.IsDelivered() {
		return nil, apperror.ErrOrderNotSettleable()
	}

	// Layer 1: Redis fast path (best-effort)
	cached, err := s.payoutCache.Get(ctx, order.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("redis payout check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedPayout(cached)
	}

	// Layer 2: DB idempotency check
	existing, err := s.payoutRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db payout check: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	// Pull the confirmed payment recorded for this order.
	txn, err := s.txRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.IsConfirmed() {
		return nil, apperror.ErrTransactionNotConfirmed()
	}

	split, err := domain.ComputeSplit(order.TotalAmount, s.rates)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	// The atomic unit is a bounded sequence of store writes; give it a short
	// deadline. A timeout rolls back and the order stays eligible for retry.
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	payout := &domain.Payout{
		ID:             uuid.New(),
		OrderID:        order.ID,
		TransactionID:  txn.ID,
		DriverID:       order.DriverID,
		VendorID:       order.VendorID,
		AmountDriver:   split.Driver,
		AmountVendor:   split.Vendor,
		AmountPlatform: split.Platform,
		Status:         domain.PayoutStatusPaid,
		PaidAt:         &now,
		CreatedAt:      now,
	}

	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			// A concurrent settlement won the race. Our transaction holds
			// nothing worth keeping; re-read the winner's payout.
			_ = dbTx.Rollback(ctx)
			winner, readErr := s.payoutRepo.GetByOrderID(ctx, order.ID)
			if readErr != nil {
				return nil, apperror.InternalError(fmt.Errorf("re-read payout: %w", readErr))
			}
			if winner == nil {
				return nil, apperror.ErrSettlementFailed(fmt.Errorf("payout vanished after duplicate insert for order %s", order.ID))
			}
			return winner, nil
		}
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("create payout: %w", err))
	}

	orderRef := order.ID.String()

	// Driver share: delivery payout.
	if split.Driver > 0 {
		if _, err := creditWallet(ctx, dbTx, s.walletRepo, s.movementRepo, walletOp{
			ownerType:   domain.OwnerTypeDriver,
			ownerID:     order.DriverID,
			amount:      split.Driver,
			kind:        domain.MovementTypePayout,
			description: "Delivery payout for order " + orderRef,
		}); err != nil {
			return nil, apperror.ErrSettlementFailed(fmt.Errorf("credit driver: %w", err))
		}
	}

	// Vendor share: sale payout.
	if split.Vendor > 0 {
		if _, err := creditWallet(ctx, dbTx, s.walletRepo, s.movementRepo, walletOp{
			ownerType:   domain.OwnerTypeVendor,
			ownerID:     order.VendorID,
			amount:      split.Vendor,
			kind:        domain.MovementTypePayout,
			description: "Sale payout for order " + orderRef,
		}); err != nil {
			return nil, apperror.ErrSettlementFailed(fmt.Errorf("credit vendor: %w", err))
		}
	}

	// Platform commission, recorded even when rounding leaves it at zero so
	// every settled transaction has a revenue row.
	revenue := &domain.PlatformRevenue{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		Source:        domain.RevenueSourceOrderCommission,
		Amount:        split.Platform,
		CreatedAt:     now,
	}
	if err := s.revenueRepo.Create(ctx, dbTx, revenue); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("record platform revenue: %w", err))
	}

	// Customer cashback, funded from platform margin — independent of the
	// vendor/driver/platform split.
	if split.Cashback > 0 {
		if _, err := creditWallet(ctx, dbTx, s.walletRepo, s.movementRepo, walletOp{
			ownerType:   domain.OwnerTypeCustomer,
			ownerID:     order.CustomerID,
			amount:      split.Cashback,
			kind:        domain.MovementTypeCashback,
			description: "Cashback for order " + orderRef,
		}); err != nil {
			return nil, apperror.ErrSettlementFailed(fmt.Errorf("credit cashback: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit: cache the payout for fast-path retries (best-effort).
	if payoutJSON, err := json.Marshal(payout); err == nil {
		if err := s.payoutCache.Set(ctx, order.ID, payoutJSON, payoutCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to cache payout in redis")
		}
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("order_id", order.ID.String()).
		Int64("vendor_amount", split.Vendor).
		Int64("driver_amount", split.Driver).
		Int64("platform_amount", split.Platform).
		Int64("cashback_amount", split.Cashback).
		Msg("order settled")

	return payout, nil
}

// GetPayout returns the settlement record for an order.
func (s *SettlementServiceImpl) GetPayout(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	return payout, nil
}

// unmarshalCachedPayout deserializes a cached payout.
func (s *SettlementServiceImpl) unmarshalCachedPayout(data []byte) (*domain.Payout, error) {
	payout := &domain.Payout{}
	if err := json.Unmarshal(data, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached payout: %w", err))
	}
	return payout, nil
}
