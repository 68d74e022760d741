package deriv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/dto"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3
	retryBackoff   = 500 * time.Millisecond
)

// Client is the single gateway to the Deriv API. It is stateless and safe to
// share across goroutines.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Account resolves a bearer token to the account identity behind it. Any
// non-200 response means the token is not valid.
func (c *Client) Account(ctx context.Context, token string) (*domain.AccountInfo, error) {
	body, status, err := c.get(ctx, "account", token)
	if err != nil {
		return nil, fmt.Errorf("error calling deriv account endpoint: %w", err)
	}

	if status != http.StatusOK {
		logger.Log.Warn("deriv rejected token", logger.Int("status", status))
		return nil, domain.ErrInvalidToken
	}

	var res dto.DerivAccountResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("error decoding deriv account response: %w", err)
	}

	if res.Account.LoginID == "" {
		return nil, domain.ErrInvalidToken
	}

	return &domain.AccountInfo{
		Account:  res.Account.LoginID,
		FullName: res.Account.FullName,
		Email:    res.Account.Email,
		Currency: domain.Currency(res.Account.Currency),
	}, nil
}

// Balance fetches the external balance for the account behind the token. A
// missing balance field reads as 0.00. The raw payload of a failed call is
// logged here and never surfaced to callers.
func (c *Client) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	body, status, err := c.get(ctx, "balance", token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error calling deriv balance endpoint: %w", err)
	}

	if status != http.StatusOK {
		logger.Log.Warn("deriv balance fetch failed",
			logger.Int("status", status),
			logger.String("payload", string(body)),
		)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return decimal.Zero, domain.ErrInvalidToken
		}
		return decimal.Zero, fmt.Errorf("deriv balance endpoint returned status %d", status)
	}

	var res dto.DerivBalanceResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return decimal.Zero, fmt.Errorf("error decoding deriv balance response: %w", err)
	}

	if res.Balance.Balance == nil {
		return decimal.Zero, nil
	}

	return decimal.NewFromFloat(*res.Balance.Balance).Round(2), nil
}

// get performs a bearer-authenticated GET with bounded retries. Only transport
// failures are retried; an HTTP status is a definitive answer.
func (c *Client) get(ctx context.Context, path, token string) ([]byte, int, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("error parsing deriv base URL: %w", err)
	}

	endpoint := baseURL.JoinPath(path).String()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(time.Duration(attempt-1) * retryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, 0, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		response, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			logger.Log.Warn("deriv request failed, retrying",
				logger.String("path", path),
				logger.Int("attempt", attempt),
				logger.Error(err),
			)
			continue
		}

		body, err := io.ReadAll(response.Body)
		closeErr := response.Body.Close()
		if closeErr != nil {
			logger.Log.Error("error closing response body", logger.Error(closeErr))
		}
		if err != nil {
			lastErr = err
			continue
		}

		return body, response.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("deriv request failed after %d attempts: %w", maxAttempts, lastErr)
}
