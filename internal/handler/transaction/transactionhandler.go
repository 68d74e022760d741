package transactionhandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/dto"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/shopspring/decimal"
)

type TransactionService interface {
	CreateDeposit(userID int64, amount decimal.Decimal, currency domain.Currency) (*domain.Transaction, error)
	CreateWithdrawal(userID int64, amount decimal.Decimal, currency domain.Currency) (*domain.Transaction, error)
	Transactions(userID, cursorID int64, limit int) ([]domain.Transaction, int64, error)
}

type TransactionHandler struct {
	srv    TransactionService
	config *config.Config
}

func New(srv TransactionService, config *config.Config) *TransactionHandler {
	return &TransactionHandler{
		srv:    srv,
		config: config,
	}
}

func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var cursorID int64
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		parsed, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			logger.Log.Warn("invalid cursor", logger.String("cursor", cursor))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		cursorID = parsed
	}

	var limit int
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			logger.Log.Warn("invalid limit", logger.String("limit", limitParam))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	transactions, nextCursor, err := h.srv.Transactions(userID, cursorID, limit)
	if err != nil {
		logger.Log.Error("error while fetching transactions", logger.Int64("user_id", userID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := dto.TransactionPage{
		Transactions: make([]dto.Transaction, len(transactions)),
	}
	for i, t := range transactions {
		page.Transactions[i] = dto.Transaction{
			CorrelationID: t.CorrelationID,
			Kind:          string(t.Kind),
			Status:        string(t.Status),
			Amount:        t.Amount.StringFixed(2),
			Currency:      string(t.Currency),
			CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		}
	}
	if nextCursor > 0 {
		page.NextCursor = strconv.FormatInt(nextCursor, 10)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(page); err != nil {
		logger.Log.Error("error while encoding transactions to JSON", logger.Int64("user_id", userID), logger.Error(err))
	}
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.srv.CreateDeposit, h.config.DepositDoneURL)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.srv.CreateWithdrawal, h.config.WithdrawalDoneURL)
}

func (h *TransactionHandler) moveFunds(
	w http.ResponseWriter,
	r *http.Request,
	create func(userID int64, amount decimal.Decimal, currency domain.Currency) (*domain.Transaction, error),
	doneURL string,
) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req dto.MoveFunds
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a funds request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer closeBody(r.Body)

	if err := req.IsValid(); err != nil {
		logger.Log.Warn("invalid funds request fields", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		logger.Log.Warn("unparseable amount", logger.String("amount", req.Amount))
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	transaction, err := create(userID, amount, domain.Currency(req.Currency))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrInvalidCurrency) {
			http.Error(w, "invalid currency", http.StatusBadRequest)
			return
		}

		logger.Log.Error("error while creating transaction", logger.Int64("user_id", userID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger.Log.Info("transaction recorded",
		logger.Int64("user_id", userID),
		logger.String("correlation_id", transaction.CorrelationID),
		logger.String("kind", string(transaction.Kind)),
	)

	http.Redirect(w, r, doneURL, http.StatusSeeOther)
}

func authenticatedUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userIDHeader := r.Header.Get("User-ID")
	userID, err := strconv.ParseInt(userIDHeader, 10, 64)
	if err != nil {
		logger.Log.Error("error while parsing user ID from header", logger.String("user_id", userIDHeader), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return 0, false
	}

	return userID, true
}

func closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil {
		logger.Log.Error("error while closing request body", logger.Error(err))
	}
}
