package service

import (
	"fmt"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	depositPrefix    = "DEP"
	withdrawalPrefix = "WDR"

	maxPageSize     = 100
	defaultPageSize = 50
)

type TransactionRepository interface {
	CreateTransaction(t domain.Transaction) (int64, error)
	Transactions(userID, cursorID int64, limit int) ([]domain.Transaction, error)
	SettleTransaction(correlationID string, status domain.TransactionStatus) error
}

type TransactionService struct {
	repo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{
		repo: repo,
	}
}

func (s *TransactionService) CreateDeposit(userID int64, amount decimal.Decimal, currency domain.Currency) (*domain.Transaction, error) {
	return s.create(userID, amount, currency, domain.KindDeposit, depositPrefix)
}

func (s *TransactionService) CreateWithdrawal(userID int64, amount decimal.Decimal, currency domain.Currency) (*domain.Transaction, error) {
	return s.create(userID, amount, currency, domain.KindWithdrawal, withdrawalPrefix)
}

// create records a pending money-movement intent. No balance is touched here;
// the cached balance only ever changes through reconciliation.
func (s *TransactionService) create(userID int64, amount decimal.Decimal, currency domain.Currency, kind domain.TransactionKind, prefix string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if !currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}

	t := domain.Transaction{
		UserID:        userID,
		Amount:        amount.Round(2),
		Currency:      currency,
		Kind:          kind,
		Status:        domain.StatusPending,
		CorrelationID: fmt.Sprintf("%s-%s", prefix, uuid.NewString()),
	}

	id, err := s.repo.CreateTransaction(t)
	if err != nil {
		return nil, err
	}

	t.ID = id

	return &t, nil
}

// Transactions pages through the user's ledger newest first. The returned
// cursor is the id of the last row, or zero when the page was not full.
func (s *TransactionService) Transactions(userID, cursorID int64, limit int) ([]domain.Transaction, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	transactions, err := s.repo.Transactions(userID, cursorID, limit)
	if err != nil {
		return nil, 0, err
	}

	var nextCursor int64
	if len(transactions) == limit {
		nextCursor = transactions[len(transactions)-1].ID
	}

	return transactions, nextCursor, nil
}

func (s *TransactionService) Settle(correlationID string, status domain.TransactionStatus) error {
	if status != domain.StatusCompleted && status != domain.StatusFailed {
		return domain.ErrInvalidStatus
	}

	return s.repo.SettleTransaction(correlationID, status)
}
