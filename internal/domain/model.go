package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencyGBP  Currency = "GBP"
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyBTC, CurrencyETH, CurrencyUSDT:
		return true
	}
	return false
}

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

type User struct {
	ID              int64
	Username        string
	Email           string
	Password        string
	DerivAccount    string
	Balance         decimal.Decimal
	DefaultCurrency Currency
	RegisteredAt    time.Time
}

// Credential is the stored Deriv token pair for a user. There is at most one
// per user; a new OAuth exchange replaces it wholesale.
type Credential struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LinkCode     string
	CreatedAt    time.Time
}

func (c Credential) Expired() bool {
	return !time.Now().Before(c.ExpiresAt)
}

// Transaction is an append-only money-movement intent. Status only moves
// forward: pending -> completed or pending -> failed.
type Transaction struct {
	ID            int64
	UserID        int64
	Amount        decimal.Decimal
	Currency      Currency
	Kind          TransactionKind
	Status        TransactionStatus
	CorrelationID string
	CreatedAt     time.Time
}

type Session struct {
	ID        int64
	UserID    int64
	SessionID string
	Active    bool
	CreatedAt time.Time
}

// ReconcileTarget pairs a user with the access token the reconciliation
// sweep should use for them.
type ReconcileTarget struct {
	UserID      int64
	AccessToken string
}

// AccountInfo is the identity returned by the Deriv account endpoint.
type AccountInfo struct {
	Account  string
	FullName string
	Email    string
	Currency Currency
}
