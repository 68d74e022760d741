package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr              string        `env:"RUN_ADDRESS" env-default:"localhost:8080"`
	DatabaseURL       string        `env:"DATABASE_URI"`
	PrivateKey        string        `env:"PRIVATE_KEY" env-default:"privatekey"`
	SettlementKey     string        `env:"SETTLEMENT_KEY" env-default:"settlementkey"`
	AuthDisabledURLs  []string      `env:"AUTH_DISABLED_URLS" env-default:"/api/signup,/api/login,/api/link/complete,/api/settlements,/auth/deriv,/callback,/api/ws" env-separator:","`
	DerivAPIURL       string        `env:"DERIV_API_URL" env-default:"https://api.deriv.com/api/v2"`
	DerivOAuthURL     string        `env:"DERIV_OAUTH_URL" env-default:"https://oauth.deriv.com/oauth2/authorize"`
	DerivAppID        string        `env:"DERIV_APP_ID" env-default:"70029"`
	RedirectURI       string        `env:"DERIV_REDIRECT_URI" env-default:"http://localhost:8080/callback"`
	LinkSuccessURL    string        `env:"LINK_SUCCESS_URL" env-default:"http://localhost:8081/auth-success"`
	LinkFailureURL    string        `env:"LINK_FAILURE_URL" env-default:"http://localhost:8081/auth-failed"`
	DepositDoneURL    string        `env:"DEPOSIT_DONE_URL" env-default:"http://localhost:8081/deposit-success"`
	WithdrawalDoneURL string        `env:"WITHDRAWAL_DONE_URL" env-default:"http://localhost:8081/withdrawal-success"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" env-default:"1h"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" env-default:"24h"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.Addr, "a", "localhost:8080", "HTTP server address")
	flag.StringVar(&cfg.DatabaseURL, "d", "", "database URL")
	flag.StringVar(&cfg.DerivAPIURL, "r", "https://api.deriv.com/api/v2", "Deriv API base URL")

	flag.Parse()

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
