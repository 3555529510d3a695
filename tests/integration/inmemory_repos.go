package integration

import (
	"context"
	"fmt"
	"sync"

	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ledgerStore is a single in-memory stand-in for the PostgreSQL database.
// All repos share it so transactional semantics (snapshot on begin, restore
// on rollback) cover every table at once, the way a real database transaction
// would. Transactions are serialized by txMu, which also stands in for the
// row-level wallet locks.
type ledgerStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	wallets      map[uuid.UUID]domain.Wallet
	movements    map[uuid.UUID]domain.Movement
	transactions map[uuid.UUID]domain.Transaction
	payouts      map[uuid.UUID]domain.Payout
	revenues     map[uuid.UUID]domain.PlatformRevenue

	// failRevenueCreate injects a failure mid-settlement to exercise rollback.
	failRevenueCreate error
}

func newLedgerStore() *ledgerStore {
	return &ledgerStore{
		wallets:      make(map[uuid.UUID]domain.Wallet),
		movements:    make(map[uuid.UUID]domain.Movement),
		transactions: make(map[uuid.UUID]domain.Transaction),
		payouts:      make(map[uuid.UUID]domain.Payout),
		revenues:     make(map[uuid.UUID]domain.PlatformRevenue),
	}
}

func (s *ledgerStore) snapshot() *ledgerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &ledgerSnapshot{
		wallets:      cloneMap(s.wallets),
		movements:    cloneMap(s.movements),
		transactions: cloneMap(s.transactions),
		payouts:      cloneMap(s.payouts),
		revenues:     cloneMap(s.revenues),
	}
}

func (s *ledgerStore) restore(snap *ledgerSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = cloneMap(snap.wallets)
	s.movements = cloneMap(snap.movements)
	s.transactions = cloneMap(snap.transactions)
	s.payouts = cloneMap(snap.payouts)
	s.revenues = cloneMap(snap.revenues)
}

type ledgerSnapshot struct {
	wallets      map[uuid.UUID]domain.Wallet
	movements    map[uuid.UUID]domain.Movement
	transactions map[uuid.UUID]domain.Transaction
	payouts      map[uuid.UUID]domain.Payout
	revenues     map[uuid.UUID]domain.PlatformRevenue
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct{ store *ledgerStore }

func newInMemoryWalletRepo(store *ledgerStore) *inMemoryWalletRepo {
	return &inMemoryWalletRepo{store: store}
}

func (r *inMemoryWalletRepo) GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, w := range r.store.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, ownerType domain.OwnerType, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID {
			cp := w
			return &cp, nil
		}
	}
	w := domain.Wallet{
		ID:        uuid.New(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Balance:   0,
	}
	r.store.wallets[w.ID] = w
	cp := w
	return &cp, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	w.Balance = balance
	r.store.wallets[walletID] = w
	return nil
}

// --- In-Memory Movement Repo ---

type inMemoryMovementRepo struct{ store *ledgerStore }

func newInMemoryMovementRepo(store *ledgerStore) *inMemoryMovementRepo {
	return &inMemoryMovementRepo{store: store}
}

func (r *inMemoryMovementRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.Movement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movements[m.ID] = *m
	return nil
}

func (r *inMemoryMovementRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := []domain.Movement{}
	for _, m := range r.store.movements {
		if m.WalletID == walletID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *inMemoryMovementRepo) SumSigned(ctx context.Context, walletID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var sum int64
	for _, m := range r.store.movements {
		if m.WalletID == walletID {
			sum += m.SignedAmount()
		}
	}
	return sum, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct{ store *ledgerStore }

func newInMemoryTransactionRepo(store *ledgerStore) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{store: store}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.transactions {
		if existing.OrderID == t.OrderID {
			return fmt.Errorf("insert transaction: %w", ports.ErrDuplicate)
		}
	}
	r.store.transactions[t.ID] = *t
	return nil
}

func (r *inMemoryTransactionRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, t := range r.store.transactions {
		if t.OrderID == orderID {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct{ store *ledgerStore }

func newInMemoryPayoutRepo(store *ledgerStore) *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{store: store}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.payouts {
		if existing.OrderID == p.OrderID {
			return fmt.Errorf("insert payout: %w", ports.ErrDuplicate)
		}
	}
	r.store.payouts[p.ID] = *p
	return nil
}

func (r *inMemoryPayoutRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.payouts {
		if p.OrderID == orderID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Platform Revenue Repo ---

type inMemoryRevenueRepo struct{ store *ledgerStore }

func newInMemoryRevenueRepo(store *ledgerStore) *inMemoryRevenueRepo {
	return &inMemoryRevenueRepo{store: store}
}

func (r *inMemoryRevenueRepo) Create(ctx context.Context, tx pgx.Tx, rev *domain.PlatformRevenue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failRevenueCreate != nil {
		return r.store.failRevenueCreate
	}
	r.store.revenues[rev.ID] = *rev
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions and snapshots the whole store on
// begin, so a rollback restores every table exactly as a database would.
type inMemoryTransactor struct{ store *ledgerStore }

func newInMemoryTransactor(store *ledgerStore) *inMemoryTransactor {
	return &inMemoryTransactor{store: store}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &snapshotTx{store: t.store, snap: t.store.snapshot()}, nil
}

// snapshotTx implements pgx.Tx over the in-memory store. Commit discards the
// snapshot; Rollback restores it. Either way the transaction lock is released
// exactly once.
type snapshotTx struct {
	store *ledgerStore
	snap  *ledgerSnapshot
	done  bool
}

func (t *snapshotTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *snapshotTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.restore(t.snap)
	t.store.txMu.Unlock()
	return nil
}

func (t *snapshotTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *snapshotTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *snapshotTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *snapshotTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *snapshotTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *snapshotTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *snapshotTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *snapshotTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *snapshotTx) Conn() *pgx.Conn { return nil }
