package dto

import (
	"errors"
	"fmt"
	"strings"
)

/**
  {
      "correlation_id": "DEP-6f1c0e6a-...",
      "kind": "deposit",
      "status": "pending",
      "amount": "25.00",
      "currency": "USD",
      "created_at": "2025-02-10T15:15:45+03:00"
  }
*/

type Transaction struct {
	CorrelationID string `json:"correlation_id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CreatedAt     string `json:"created_at"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	NextCursor   string        `json:"next_cursor,omitempty"`
}

type MoveFunds struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m MoveFunds) IsValid() error {
	var amountErr, currencyErr error

	if strings.TrimSpace(m.Amount) == "" {
		amountErr = fmt.Errorf("amount is required")
	}

	if strings.TrimSpace(m.Currency) == "" {
		currencyErr = fmt.Errorf("currency is required")
	}

	return errors.Join(amountErr, currencyErr)
}

type Settlement struct {
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
}

func (s Settlement) IsValid() error {
	var idErr, statusErr error

	if strings.TrimSpace(s.CorrelationID) == "" {
		idErr = fmt.Errorf("correlation_id is required")
	}

	if s.Status != "completed" && s.Status != "failed" {
		statusErr = fmt.Errorf("status must be completed or failed")
	}

	return errors.Join(idErr, statusErr)
}
