package userhandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/dto"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
)

type UserService interface {
	Register(username, email, derivAccount, password string) (*domain.User, string, error)
	Login(username, password string) (*domain.User, string, error)
	User(userID int64) (*domain.User, error)
	Logout(userID int64) error
}

type UserHandler struct {
	srv UserService
}

func New(srv UserService) *UserHandler {
	return &UserHandler{
		srv: srv,
	}
}

func (uh *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var signup dto.Signup

	if err := json.NewDecoder(r.Body).Decode(&signup); err != nil {
		logger.Log.Warn("error while decoding a signup request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer closeBody(r.Body)

	if err := signup.IsValid(); err != nil {
		logger.Log.Warn("invalid signup fields", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, token, err := uh.srv.Register(signup.Username, signup.Email, signup.DerivAccount, signup.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		if errors.Is(err, domain.ErrAccountTaken) {
			http.Error(w, "deriv account already linked", http.StatusConflict)
			return
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeUser(w, http.StatusCreated, user)
}

func (uh *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var login dto.Login

	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		logger.Log.Warn("error while decoding a login request")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer closeBody(r.Body)

	if err := login.IsValid(); err != nil {
		logger.Log.Warn("invalid login fields", logger.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, token, err := uh.srv.Login(login.Username, login.Password)
	if err != nil {
		if errors.Is(err, domain.ErrIncorrectCredentials) {
			http.Error(w, "incorrect username or password", http.StatusUnauthorized)
			return
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeUser(w, http.StatusOK, user)
}

func (uh *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	user, err := uh.srv.User(userID)
	if err != nil {
		logger.Log.Error("error while fetching user", logger.Int64("user_id", userID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeUser(w, http.StatusOK, user)
}

func (uh *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	if err := uh.srv.Logout(userID); err != nil {
		logger.Log.Error("error while logging out", logger.Int64("user_id", userID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
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

func writeUser(w http.ResponseWriter, status int, user *domain.User) {
	resp := dto.User{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		DerivAccount:    user.DerivAccount,
		Balance:         user.Balance.StringFixed(2),
		DefaultCurrency: string(user.DefaultCurrency),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.Error("error while encoding user to JSON", logger.Error(err))
	}
}

func closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil {
		logger.Log.Error("error while closing request body", logger.Error(err))
	}
}
