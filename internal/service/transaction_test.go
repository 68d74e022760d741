package service

import (
	"strings"
	"testing"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactionRepo struct {
	created []domain.Transaction
	pages   map[int64][]domain.Transaction
	settled map[string]domain.TransactionStatus
	nextID  int64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		pages:   make(map[int64][]domain.Transaction),
		settled: make(map[string]domain.TransactionStatus),
	}
}

func (f *fakeTransactionRepo) CreateTransaction(t domain.Transaction) (int64, error) {
	f.nextID++
	t.ID = f.nextID
	f.created = append(f.created, t)
	return t.ID, nil
}

func (f *fakeTransactionRepo) Transactions(userID, cursorID int64, limit int) ([]domain.Transaction, error) {
	all := f.pages[userID]
	var out []domain.Transaction
	for _, t := range all {
		if cursorID != 0 && t.ID >= cursorID {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) SettleTransaction(correlationID string, status domain.TransactionStatus) error {
	if _, ok := f.settled[correlationID]; ok {
		return domain.ErrAlreadySettled
	}
	f.settled[correlationID] = status
	return nil
}

func TestCreateDepositRejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	for _, amount := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromFloat(-10.50),
	} {
		_, err := srv.CreateDeposit(1, amount, domain.CurrencyUSD)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}

	assert.Empty(t, repo.created, "no record may be written for a rejected amount")
}

func TestCreateWithdrawalRejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	_, err := srv.CreateWithdrawal(1, decimal.Zero, domain.CurrencyUSD)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Empty(t, repo.created)
}

func TestCreateRejectsUnknownCurrency(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	_, err := srv.CreateDeposit(1, decimal.NewFromInt(10), domain.Currency("DOGE"))
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
	assert.Empty(t, repo.created)
}

func TestCreatedTransactionsArePendingWithUniqueCorrelationIDs(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		deposit, err := srv.CreateDeposit(1, decimal.NewFromFloat(25.00), domain.CurrencyUSD)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPending, deposit.Status)
		assert.True(t, strings.HasPrefix(deposit.CorrelationID, "DEP-"))
		assert.False(t, seen[deposit.CorrelationID], "correlation id reused: %s", deposit.CorrelationID)
		seen[deposit.CorrelationID] = true
	}

	withdrawal, err := srv.CreateWithdrawal(1, decimal.NewFromFloat(5.00), domain.CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, withdrawal.Status)
	assert.True(t, strings.HasPrefix(withdrawal.CorrelationID, "WDR-"))
	assert.Equal(t, domain.KindWithdrawal, withdrawal.Kind)
}

func TestCreateRoundsAmountToTwoPlaces(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	deposit, err := srv.CreateDeposit(1, decimal.RequireFromString("10.005"), domain.CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, "10.01", deposit.Amount.StringFixed(2))
}

func TestTransactionsPaginationCursor(t *testing.T) {
	repo := newFakeTransactionRepo()
	for i := int64(5); i >= 1; i-- {
		repo.pages[1] = append(repo.pages[1], domain.Transaction{ID: i, UserID: 1})
	}
	srv := NewTransactionService(repo)

	page, cursor, err := srv.Transactions(1, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].ID)
	assert.Equal(t, int64(4), cursor)

	page, cursor, err = srv.Transactions(1, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(2), cursor)

	page, cursor, err = srv.Transactions(1, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ID)
	assert.Zero(t, cursor, "a short page ends the listing")
}

func TestSettleRejectsBadStatus(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	err := srv.Settle("DEP-abc", domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSettleIsOneWay(t *testing.T) {
	repo := newFakeTransactionRepo()
	srv := NewTransactionService(repo)

	require.NoError(t, srv.Settle("DEP-abc", domain.StatusCompleted))
	assert.ErrorIs(t, srv.Settle("DEP-abc", domain.StatusFailed), domain.ErrAlreadySettled)
}
