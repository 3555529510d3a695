package service

import (
	"context"
	"errors"
	"testing"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type transactionTestDeps struct {
	svc    *TransactionServiceImpl
	txRepo *mocks.MockTransactionRepository
	ctrl   *gomock.Controller
}

func setupTransactionService(t *testing.T) *transactionTestDeps {
	ctrl := gomock.NewController(t)
	d := &transactionTestDeps{
		txRepo: mocks.NewMockTransactionRepository(ctrl),
		ctrl:   ctrl,
	}
	d.svc = NewTransactionService(d.txRepo, zerolog.Nop())
	return d
}

func recordRequest() ports.RecordTransactionRequest {
	return ports.RecordTransactionRequest{
		OrderID:       uuid.New(),
		CustomerID:    uuid.New(),
		Amount:        12990,
		PaymentMethod: "pix",
	}
}

func TestTransactionService_RecordTransaction_Success(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := recordRequest()

	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(nil, nil)
	d.txRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	txn, err := d.svc.RecordTransaction(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, req.OrderID, txn.OrderID)
	assert.Equal(t, req.CustomerID, txn.CustomerID)
	assert.Equal(t, int64(12990), txn.Amount)
	assert.Equal(t, "pix", txn.PaymentMethod)
	assert.Equal(t, domain.TransactionStatusConfirmed, txn.Status)
	assert.NotEqual(t, uuid.Nil, txn.ID)
}

func TestTransactionService_RecordTransaction_InvalidAmount(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	req := recordRequest()
	req.Amount = 0

	txn, err := d.svc.RecordTransaction(context.Background(), req)
	assert.Nil(t, txn)
	require.Error(t, err)
	assertAppError(t, err, "LED_001")
}

func TestTransactionService_RecordTransaction_IdempotentReplay(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := recordRequest()
	existing := &domain.Transaction{
		ID:         uuid.New(),
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Status:     domain.TransactionStatusConfirmed,
	}

	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(existing, nil)

	txn, err := d.svc.RecordTransaction(ctx, req)
	require.NoError(t, err)
	assert.Same(t, existing, txn)
}

func TestTransactionService_RecordTransaction_ConflictingDuplicate(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := recordRequest()
	existing := &domain.Transaction{
		ID:         uuid.New(),
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount + 1, // different fact under the same order
		Status:     domain.TransactionStatusConfirmed,
	}

	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(existing, nil)

	txn, err := d.svc.RecordTransaction(ctx, req)
	assert.Nil(t, txn)
	require.Error(t, err)
	assertAppError(t, err, "SET_001")
}

func TestTransactionService_RecordTransaction_DuplicateRaceReturnsWinner(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := recordRequest()
	winner := &domain.Transaction{
		ID:         uuid.New(),
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Status:     domain.TransactionStatusConfirmed,
	}

	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(nil, nil)
	d.txRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrDuplicate)
	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(winner, nil)

	txn, err := d.svc.RecordTransaction(ctx, req)
	require.NoError(t, err)
	assert.Same(t, winner, txn)
}

func TestTransactionService_RecordTransaction_RepoFailure(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := recordRequest()

	d.txRepo.EXPECT().GetByOrderID(ctx, req.OrderID).Return(nil, errors.New("connection refused"))

	txn, err := d.svc.RecordTransaction(ctx, req)
	assert.Nil(t, txn)
	require.Error(t, err)
	assertAppError(t, err, "SYS_001")
}

func TestTransactionService_GetByOrderID_Found(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	orderID := uuid.New()
	txn := &domain.Transaction{ID: uuid.New(), OrderID: orderID}

	d.txRepo.EXPECT().GetByOrderID(ctx, orderID).Return(txn, nil)

	result, err := d.svc.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Same(t, txn, result)
}

func TestTransactionService_GetByOrderID_NotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	orderID := uuid.New()

	d.txRepo.EXPECT().GetByOrderID(ctx, orderID).Return(nil, nil)

	result, err := d.svc.GetByOrderID(ctx, orderID)
	assert.Nil(t, result)
	require.Error(t, err)
	assertAppError(t, err, "LED_003")
}
