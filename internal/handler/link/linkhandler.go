package linkhandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/dto"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
)

type LinkService interface {
	AuthorizeURL() string
	Complete(ctx context.Context, token, account string) (string, error)
	Redeem(code string) (string, error)
}

type LinkHandler struct {
	srv    LinkService
	config *config.Config
}

func New(srv LinkService, config *config.Config) *LinkHandler {
	return &LinkHandler{
		srv:    srv,
		config: config,
	}
}

// Authorize sends the client to the external authorization UI.
func (h *LinkHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.srv.AuthorizeURL(), http.StatusTemporaryRedirect)
}

// Callback is the landing point of the external redirect. Failure paths all
// redirect to the failure URL with a generic reason; the raw token and any
// external error body stay server-side.
func (h *LinkHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token1"))
	account := strings.TrimSpace(r.URL.Query().Get("acct1"))

	if token == "" || account == "" {
		logger.Log.Warn("oauth callback missing token or account")
		h.failure(w, r, "missing token or account")
		return
	}

	code, err := h.srv.Complete(r.Context(), token, account)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			logger.Log.Warn("oauth callback token rejected")
			h.failure(w, r, "invalid token")
		case errors.Is(err, domain.ErrUserNotFound):
			logger.Log.Warn("oauth callback for unknown account", logger.String("deriv_account", account))
			h.failure(w, r, "unknown account")
		default:
			logger.Log.Error("error completing link handshake", logger.Error(err))
			h.failure(w, r, "link failed")
		}
		return
	}

	params := url.Values{}
	params.Set("code", code)
	params.Set("account", account)

	http.Redirect(w, r, h.config.LinkSuccessURL+"?"+params.Encode(), http.StatusFound)
}

// Complete exchanges a one-time link code for a bearer token.
func (h *LinkHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkComplete

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn("error while decoding a link complete request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer closeBody(r.Body)

	if err := req.IsValid(); err != nil {
		logger.Log.Warn("invalid link complete fields", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.srv.Redeem(req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrLinkCodeNotFound) {
			http.Error(w, "unknown or used link code", http.StatusUnauthorized)
			return
		}

		logger.Log.Error("error redeeming link code", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func (h *LinkHandler) failure(w http.ResponseWriter, r *http.Request, reason string) {
	params := url.Values{}
	params.Set("error", reason)

	http.Redirect(w, r, h.config.LinkFailureURL+"?"+params.Encode(), http.StatusFound)
}

func closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil {
		logger.Log.Error("error while closing request body", logger.Error(err))
	}
}
