package postgres

import (
	"context"
	"testing"
	"time"

	"mercafacil/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMovement(walletID uuid.UUID) *domain.Movement {
	return &domain.Movement{
		ID:          uuid.New(),
		WalletID:    walletID,
		Type:        domain.MovementTypePayout,
		Amount:      8000,
		Direction:   domain.DirectionIn,
		Description: "Sale payout for order abc",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func movementColumnNames() []string {
	return []string{"id", "wallet_id", "type", "amount", "direction", "description", "created_at"}
}

func TestMovementRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := newTestMovement(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movements").
		WithArgs(m.ID, m.WalletID, m.Type, m.Amount, m.Direction, m.Description, m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	walletID := uuid.New()
	newer := newTestMovement(walletID)
	older := newTestMovement(walletID)
	older.Type = domain.MovementTypeWithdrawal
	older.Direction = domain.DirectionOut
	older.Amount = 3000

	mock.ExpectQuery("SELECT .+ FROM movements WHERE wallet_id .+ ORDER BY created_at DESC").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows(movementColumnNames()).
			AddRow(newer.ID, newer.WalletID, newer.Type, newer.Amount, newer.Direction, newer.Description, newer.CreatedAt).
			AddRow(older.ID, older.WalletID, older.Type, older.Amount, older.Direction, older.Description, older.CreatedAt))

	result, err := repo.ListByWallet(context.Background(), walletID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, newer.ID, result[0].ID)
	assert.Equal(t, older.ID, result[1].ID)
	assert.Equal(t, domain.DirectionOut, result[1].Direction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_ListByWallet_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM movements WHERE wallet_id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(movementColumnNames()))

	result, err := repo.ListByWallet(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_SumSigned(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(4700)))

	sum, err := repo.SumSigned(context.Background(), walletID)
	require.NoError(t, err)
	assert.Equal(t, int64(4700), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
