package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// memLedger is an in-memory LedgerStore. WithinTx serializes callers with a
// mutex and works on a deep copy of the state, committing the copy back only
// when fn returns nil.
type memLedger struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*domain.User
	traders      map[uuid.UUID]*domain.Trader
	transactions map[uuid.UUID]*domain.Transaction

	// failBalanceWriteAt fails the Nth UpdateBalances call (1-based) when > 0
	failBalanceWriteAt int
	balanceWrites      int
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:        make(map[uuid.UUID]*domain.User),
		traders:      make(map[uuid.UUID]*domain.Trader),
		transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

var errInjectedWrite = errors.New("injected balance write failure")

func (m *memLedger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := &memLedgerTx{
		store:        m,
		users:        make(map[uuid.UUID]*domain.User, len(m.users)),
		transactions: make(map[uuid.UUID]*domain.Transaction, len(m.transactions)),
	}
	for id, u := range m.users {
		view.users[id] = copyUser(u)
	}
	for id, t := range m.transactions {
		view.transactions[id] = copyTransaction(t)
	}

	if err := fn(ctx, view); err != nil {
		return err
	}

	m.users = view.users
	m.transactions = view.transactions
	return nil
}

func (m *memLedger) user(id uuid.UUID) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUser(m.users[id])
}

func (m *memLedger) transaction(id uuid.UUID) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyTransaction(m.transactions[id])
}

type memLedgerTx struct {
	store        *memLedger
	users        map[uuid.UUID]*domain.User
	transactions map[uuid.UUID]*domain.Transaction
}

func (tx *memLedgerTx) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, ok := tx.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (tx *memLedgerTx) SetTransactionStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	t, ok := tx.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != domain.StatusPending {
		return domain.ErrAlreadySettled
	}
	t.Status = status
	return nil
}

func (tx *memLedgerTx) UserForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := tx.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (tx *memLedgerTx) DepositorsForUpdate(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range tx.users {
		if u.Deposit.GreaterThan(decimal.Zero) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

func (tx *memLedgerTx) UpdateBalances(ctx context.Context, user *domain.User) error {
	tx.store.balanceWrites++
	if tx.store.failBalanceWriteAt > 0 && tx.store.balanceWrites >= tx.store.failBalanceWriteAt {
		return errInjectedWrite
	}
	tx.users[user.ID] = user
	return nil
}

func (tx *memLedgerTx) TraderByID(ctx context.Context, id uuid.UUID) (*domain.Trader, error) {
	t, ok := tx.store.traders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.TraderID != nil {
		id := *u.TraderID
		c.TraderID = &id
	}
	return &c
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.WalletData != nil {
		w := *t.WalletData
		c.WalletData = &w
	}
	if t.TradeData != nil {
		d := *t.TradeData
		c.TradeData = &d
	}
	return &c
}

// recordingAudit captures audit events for assertions
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(ctx context.Context, event domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

// stubNotifier counts settled notifications and can fail on demand
type stubNotifier struct {
	mu      sync.Mutex
	settled int
	err     error
}

func (n *stubNotifier) TransactionPending(ctx context.Context, t *domain.Transaction) error {
	return nil
}

func (n *stubNotifier) TransactionSettled(ctx context.Context, t *domain.Transaction, user *domain.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled++
	return n.err
}

func (n *stubNotifier) StalePending(ctx context.Context, ts []*domain.Transaction) error {
	return nil
}

func newTestService(store *memLedger) (*SettlementService, *recordingAudit, *stubNotifier) {
	audit := &recordingAudit{}
	notifier := &stubNotifier{}
	svc := NewSettlementService(store, audit, notifier, zap.NewNop())
	return svc, audit, notifier
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUser(store *memLedger, deposit, interest string, traderID *uuid.UUID) *domain.User {
	user := &domain.User{
		ID:       uuid.New(),
		Username: "u-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		Deposit:  dec(deposit),
		Interest: dec(interest),
		Withdraw: decimal.Zero,
		Demo:     dec("10000"),
		TraderID: traderID,
	}
	store.users[user.ID] = user
	return user
}

func seedTrader(store *memLedger, specialization string) *domain.Trader {
	trader := &domain.Trader{
		ID:             uuid.New(),
		Name:           "Trader " + specialization,
		Username:       "t-" + uuid.NewString()[:8],
		Specialization: specialization,
		Status:         domain.TraderStatusActive,
	}
	store.traders[trader.ID] = trader
	return trader
}

func seedPending(store *memLedger, txType domain.TransactionType, user *domain.User, amount string) *domain.Transaction {
	t := &domain.Transaction{
		ID:     uuid.New(),
		Type:   txType,
		Status: domain.StatusPending,
		Amount: dec(amount),
		Date:   time.Now(),
	}
	if user != nil {
		t.User = domain.UserSnapshot{ID: user.ID, Email: user.Email, Name: user.FullName}
	}
	store.transactions[t.ID] = t
	return t
}

func seedPendingTrade(store *memLedger, category, rate string) *domain.Transaction {
	t := &domain.Transaction{
		ID:     uuid.New(),
		Type:   domain.TypeTrade,
		Status: domain.StatusPending,
		Amount: decimal.Zero,
		Date:   time.Now(),
		TradeData: &domain.TradeData{
			Package:      "Starter",
			InterestRate: dec(rate),
			Category:     category,
		},
	}
	store.transactions[t.ID] = t
	return t
}

var admin = domain.Actor{ID: uuid.New(), Email: "admin@example.com", IsAdmin: true}

func TestSettleDepositSuccess(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "0", nil)
	deposit := seedPending(store, domain.TypeDeposit, user, "250")
	svc, audit, notifier := newTestService(store)

	res, err := svc.SettleDeposit(context.Background(), deposit.ID, domain.StatusSuccess, admin)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, res.Transaction.Status)
	require.NotNil(t, res.User)
	assert.True(t, res.User.Deposit.Equal(dec("350")), "deposit should be 350, got %s", res.User.Deposit)

	stored := store.user(user.ID)
	assert.True(t, stored.Deposit.Equal(dec("350")))
	assert.Equal(t, domain.StatusSuccess, store.transaction(deposit.ID).Status)

	require.Len(t, audit.events, 1)
	assert.Equal(t, "settle_deposit", audit.events[0].Action)
	assert.Equal(t, 1, notifier.settled)
}

func TestSettleDepositRejectedLeavesBalance(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "0", nil)
	deposit := seedPending(store, domain.TypeDeposit, user, "250")
	svc, _, _ := newTestService(store)

	res, err := svc.SettleDeposit(context.Background(), deposit.ID, domain.StatusRejected, admin)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, res.Transaction.Status)
	assert.Nil(t, res.User)
	assert.True(t, store.user(user.ID).Deposit.Equal(dec("100")))
}

func TestSettleDepositTwiceReturnsAlreadySettled(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "0", "0", nil)
	deposit := seedPending(store, domain.TypeDeposit, user, "50")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleDeposit(context.Background(), deposit.ID, domain.StatusSuccess, admin)
	require.NoError(t, err)

	_, err = svc.SettleDeposit(context.Background(), deposit.ID, domain.StatusSuccess, admin)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	// the credit applied exactly once
	assert.True(t, store.user(user.ID).Deposit.Equal(dec("50")))
}

func TestSettleDepositRejectsInvalidDecision(t *testing.T) {
	store := newMemLedger()
	svc, _, _ := newTestService(store)

	_, err := svc.SettleDeposit(context.Background(), uuid.New(), domain.StatusPending, admin)
	assert.Error(t, err)
}

func TestSettleDepositWrongTypeIsNotFound(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "0", "0", nil)
	withdrawal := seedPending(store, domain.TypeWithdrawal, user, "50")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleDeposit(context.Background(), withdrawal.ID, domain.StatusSuccess, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettleWithdrawalDrawsDownDepositFirst(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "30", nil)
	withdrawal := seedPending(store, domain.TypeWithdrawal, user, "120")
	svc, _, _ := newTestService(store)

	res, err := svc.SettleWithdrawal(context.Background(), withdrawal.ID, domain.StatusSuccess, admin)
	require.NoError(t, err)

	stored := store.user(user.ID)
	assert.True(t, stored.Deposit.Equal(decimal.Zero), "deposit drained first, got %s", stored.Deposit)
	assert.True(t, stored.Interest.Equal(dec("10")), "remainder from interest, got %s", stored.Interest)
	assert.True(t, stored.Withdraw.Equal(dec("120")))
	assert.Equal(t, domain.StatusSuccess, res.Transaction.Status)
}

func TestSettleWithdrawalWithinDepositLeavesInterest(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "30", nil)
	withdrawal := seedPending(store, domain.TypeWithdrawal, user, "80")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleWithdrawal(context.Background(), withdrawal.ID, domain.StatusSuccess, admin)
	require.NoError(t, err)

	stored := store.user(user.ID)
	assert.True(t, stored.Deposit.Equal(dec("20")))
	assert.True(t, stored.Interest.Equal(dec("30")))
	assert.True(t, stored.Withdraw.Equal(dec("80")))
}

func TestSettleWithdrawalInsufficientFunds(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "30", nil)
	withdrawal := seedPending(store, domain.TypeWithdrawal, user, "140")
	svc, audit, _ := newTestService(store)

	_, err := svc.SettleWithdrawal(context.Background(), withdrawal.ID, domain.StatusSuccess, admin)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// nothing changed: balances intact, transaction still pending
	stored := store.user(user.ID)
	assert.True(t, stored.Deposit.Equal(dec("100")))
	assert.True(t, stored.Interest.Equal(dec("30")))
	assert.True(t, stored.Withdraw.Equal(decimal.Zero))
	assert.Equal(t, domain.StatusPending, store.transaction(withdrawal.ID).Status)
	assert.Empty(t, audit.events)
}

func TestSettleWithdrawalRejectedLeavesBalance(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "30", nil)
	withdrawal := seedPending(store, domain.TypeWithdrawal, user, "80")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleWithdrawal(context.Background(), withdrawal.ID, domain.StatusRejected, admin)
	require.NoError(t, err)

	stored := store.user(user.ID)
	assert.True(t, stored.Deposit.Equal(dec("100")))
	assert.True(t, stored.Withdraw.Equal(decimal.Zero))
	assert.Equal(t, domain.StatusRejected, store.transaction(withdrawal.ID).Status)
}

func TestConcurrentWithdrawalsExactlyOneSucceeds(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "100", "50", nil)
	first := seedPending(store, domain.TypeWithdrawal, user, "100")
	second := seedPending(store, domain.TypeWithdrawal, user, "100")
	svc, _, _ := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.SettleWithdrawal(context.Background(), id, domain.StatusSuccess, admin)
		}(i, id)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	stored := store.user(user.ID)
	assert.True(t, stored.TotalAvailable().Equal(dec("50")), "exactly one withdrawal applied, got %s", stored.TotalAvailable())
	assert.True(t, stored.Withdraw.Equal(dec("100")))
}

func TestSettleTradeCreditsMatchingCopiersOnly(t *testing.T) {
	store := newMemLedger()
	cryptoTrader := seedTrader(store, domain.SpecializationCrypto)
	forexTrader := seedTrader(store, domain.SpecializationForex)

	copier := seedUser(store, "1000", "0", &cryptoTrader.ID)
	wrongCategory := seedUser(store, "500", "0", &forexTrader.ID)
	noTrader := seedUser(store, "800", "0", nil)
	noDeposit := seedUser(store, "0", "0", &cryptoTrader.ID)

	trade := seedPendingTrade(store, domain.SpecializationCrypto, "0.02")
	svc, audit, _ := newTestService(store)

	res, err := svc.SettleTrade(context.Background(), trade.ID, admin)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreditedUsers)
	assert.Equal(t, domain.StatusSuccess, res.Transaction.Status)

	assert.True(t, store.user(copier.ID).Interest.Equal(dec("20")), "0.02 * 1000 = 20, got %s", store.user(copier.ID).Interest)
	assert.True(t, store.user(wrongCategory.ID).Interest.Equal(decimal.Zero))
	assert.True(t, store.user(noTrader.ID).Interest.Equal(decimal.Zero))
	assert.True(t, store.user(noDeposit.ID).Interest.Equal(decimal.Zero))

	// principal untouched by disbursement
	assert.True(t, store.user(copier.ID).Deposit.Equal(dec("1000")))

	require.Len(t, audit.events, 1)
	assert.Equal(t, "settle_trade", audit.events[0].Action)
	assert.Equal(t, 1, audit.events[0].Metadata["credited_users"])
}

func TestSettleTradeSkipsUnresolvableTrader(t *testing.T) {
	store := newMemLedger()
	ghostID := uuid.New()
	orphan := seedUser(store, "1000", "0", &ghostID)

	trade := seedPendingTrade(store, domain.SpecializationCrypto, "0.02")
	svc, _, _ := newTestService(store)

	res, err := svc.SettleTrade(context.Background(), trade.ID, admin)
	require.NoError(t, err)

	assert.Equal(t, 0, res.CreditedUsers)
	assert.True(t, store.user(orphan.ID).Interest.Equal(decimal.Zero))
	assert.Equal(t, domain.StatusSuccess, store.transaction(trade.ID).Status)
}

func TestSettleTradeTwiceReturnsAlreadySettled(t *testing.T) {
	store := newMemLedger()
	trader := seedTrader(store, domain.SpecializationCrypto)
	user := seedUser(store, "1000", "0", &trader.ID)

	trade := seedPendingTrade(store, domain.SpecializationCrypto, "0.05")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleTrade(context.Background(), trade.ID, admin)
	require.NoError(t, err)

	_, err = svc.SettleTrade(context.Background(), trade.ID, admin)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	// interest credited exactly once
	assert.True(t, store.user(user.ID).Interest.Equal(dec("50")))
}

func TestSettleTradeMissingTradeData(t *testing.T) {
	store := newMemLedger()
	broken := &domain.Transaction{
		ID:     uuid.New(),
		Type:   domain.TypeTrade,
		Status: domain.StatusPending,
		Amount: decimal.Zero,
		Date:   time.Now(),
	}
	store.transactions[broken.ID] = broken
	svc, _, _ := newTestService(store)

	_, err := svc.SettleTrade(context.Background(), broken.ID, admin)
	assert.ErrorIs(t, err, domain.ErrDataIntegrityGap)
	assert.Equal(t, domain.StatusPending, store.transaction(broken.ID).Status)
}

func TestSettleTradeRollsBackAllCreditsOnFailure(t *testing.T) {
	store := newMemLedger()
	trader := seedTrader(store, domain.SpecializationCrypto)

	users := make([]*domain.User, 0, 5)
	for i := 0; i < 5; i++ {
		users = append(users, seedUser(store, "100", "0", &trader.ID))
	}

	trade := seedPendingTrade(store, domain.SpecializationCrypto, "0.01")
	store.failBalanceWriteAt = 3

	svc, audit, notifier := newTestService(store)

	_, err := svc.SettleTrade(context.Background(), trade.ID, admin)
	require.ErrorIs(t, err, errInjectedWrite)

	// all-or-nothing: the two credits before the failure rolled back too
	for _, u := range users {
		assert.True(t, store.user(u.ID).Interest.Equal(decimal.Zero))
	}
	assert.Equal(t, domain.StatusPending, store.transaction(trade.ID).Status)
	assert.Empty(t, audit.events)
	assert.Equal(t, 0, notifier.settled)
}

func TestSettleTradeRoundsCreditToLedgerScale(t *testing.T) {
	store := newMemLedger()
	trader := seedTrader(store, domain.SpecializationForex)
	user := seedUser(store, "333.33333333", "0", &trader.ID)

	trade := seedPendingTrade(store, domain.SpecializationForex, "0.03")
	svc, _, _ := newTestService(store)

	_, err := svc.SettleTrade(context.Background(), trade.ID, admin)
	require.NoError(t, err)

	// 0.03 * 333.33333333 = 9.9999999999 -> 10.00000000 at 8 decimal places
	assert.True(t, store.user(user.ID).Interest.Equal(dec("10")),
		"got %s", store.user(user.ID).Interest)
}

func TestNotifierFailureDoesNotFailSettlement(t *testing.T) {
	store := newMemLedger()
	user := seedUser(store, "0", "0", nil)
	deposit := seedPending(store, domain.TypeDeposit, user, "50")

	audit := &recordingAudit{}
	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc := NewSettlementService(store, audit, notifier, zap.NewNop())

	res, err := svc.SettleDeposit(context.Background(), deposit.ID, domain.StatusSuccess, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Transaction.Status)
	assert.True(t, store.user(user.ID).Deposit.Equal(dec("50")))
}
