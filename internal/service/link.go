package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountGateway is the slice of the Deriv client the linking flow needs.
type AccountGateway interface {
	Account(ctx context.Context, token string) (*domain.AccountInfo, error)
	Balance(ctx context.Context, token string) (decimal.Decimal, error)
}

type LinkRepository interface {
	UserByDerivAccount(account string) (*domain.User, error)
	UpsertCredential(cred domain.Credential) error
	ConsumeLinkCode(code string) (int64, error)
}

type LinkService struct {
	config  *config.Config
	repo    LinkRepository
	gateway AccountGateway
}

func NewLinkService(repo LinkRepository, gateway AccountGateway, config *config.Config) *LinkService {
	return &LinkService{
		config:  config,
		repo:    repo,
		gateway: gateway,
	}
}

// AuthorizeURL builds the external authorization redirect target.
func (s *LinkService) AuthorizeURL() string {
	params := url.Values{}
	params.Set("app_id", s.config.DerivAppID)
	params.Set("redirect_uri", s.config.RedirectURI)

	return s.config.DerivOAuthURL + "?" + params.Encode()
}

// Complete finishes the one-shot linking handshake: the callback token is
// exchanged for the account identity, the credential is replaced, and a
// one-time link code is returned in place of the raw token.
func (s *LinkService) Complete(ctx context.Context, token, account string) (string, error) {
	info, err := s.gateway.Account(ctx, token)
	if err != nil {
		return "", err
	}

	if info.Account != account {
		logger.Log.Warn("callback account does not match token identity",
			logger.String("callback_account", account),
			logger.String("token_account", info.Account),
		)
		return "", domain.ErrInvalidToken
	}

	user, err := s.repo.UserByDerivAccount(account)
	if err != nil {
		return "", err
	}

	code := uuid.NewString()
	cred := domain.Credential{
		UserID:      user.ID,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.config.TokenTTL),
		LinkCode:    code,
	}

	if err := s.repo.UpsertCredential(cred); err != nil {
		return "", err
	}

	logger.Log.Info("deriv account linked",
		logger.Int64("user_id", user.ID),
		logger.String("deriv_account", account),
	)

	return code, nil
}

// Redeem exchanges a one-time link code for a signed bearer token.
func (s *LinkService) Redeem(code string) (string, error) {
	userID, err := s.repo.ConsumeLinkCode(code)
	if err != nil {
		return "", err
	}

	token, err := generateJWTToken(userID, s.config.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("error issuing token for link code: %w", err)
	}

	return token, nil
}
