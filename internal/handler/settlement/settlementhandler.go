package settlementhandler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/dto"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
)

type SettlementService interface {
	Settle(correlationID string, status domain.TransactionStatus) error
}

// SettlementHandler receives settlement callbacks from the external system.
// Callers authenticate with a shared key, not a user session.
type SettlementHandler struct {
	srv    SettlementService
	config *config.Config
}

func New(srv SettlementService, config *config.Config) *SettlementHandler {
	return &SettlementHandler{
		srv:    srv,
		config: config,
	}
}

func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Settlement-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.config.SettlementKey)) != 1 {
		logger.Log.Warn("settlement callback with bad key")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req dto.Settlement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a settlement request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer closeBody(r.Body)

	if err := req.IsValid(); err != nil {
		logger.Log.Warn("invalid settlement fields", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.srv.Settle(req.CorrelationID, domain.TransactionStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			http.Error(w, "unknown transaction", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrAlreadySettled) {
			http.Error(w, "transaction already settled", http.StatusConflict)
			return
		}

		logger.Log.Error("error settling transaction",
			logger.String("correlation_id", req.CorrelationID),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger.Log.Info("transaction settled",
		logger.String("correlation_id", req.CorrelationID),
		logger.String("status", req.Status),
	)

	w.WriteHeader(http.StatusOK)
}

func closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil {
		logger.Log.Error("error while closing request body", logger.Error(err))
	}
}
