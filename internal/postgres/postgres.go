package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const transactionRollbackError = "error rolling back transaction"

type Postgres struct {
	DB *sql.DB
}

func New(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

func (p *Postgres) CreateUser(username, email, derivAccount, hashedPassword string, currency domain.Currency) (int64, error) {
	var id int64
	err := p.DB.QueryRow(
		"INSERT INTO users (username, email, deriv_account, password, default_currency) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		username, email, derivAccount, hashedPassword, currency,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if strings.Contains(pgErr.ConstraintName, "deriv_account") {
				logger.Log.Warn("deriv account already linked", logger.String("deriv_account", derivAccount))
				return 0, domain.ErrAccountTaken
			}
			logger.Log.Warn("user already exists", logger.String("username", username))
			return 0, domain.ErrUserExists
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

func (p *Postgres) User(username string) (*domain.User, error) {
	row := p.DB.QueryRow(
		"SELECT id, username, email, password, deriv_account, balance, default_currency, registered_at FROM users WHERE username = $1",
		username,
	)

	return scanUser(row)
}

func (p *Postgres) UserByID(id int64) (*domain.User, error) {
	row := p.DB.QueryRow(
		"SELECT id, username, email, password, deriv_account, balance, default_currency, registered_at FROM users WHERE id = $1",
		id,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrIncorrectCredentials) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (p *Postgres) UserByDerivAccount(account string) (*domain.User, error) {
	row := p.DB.QueryRow(
		"SELECT id, username, email, password, deriv_account, balance, default_currency, registered_at FROM users WHERE deriv_account = $1",
		account,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrIncorrectCredentials) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.DerivAccount,
		&user.Balance,
		&user.DefaultCurrency,
		&user.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return &user, nil
}

// UpdateBalance overwrites the cached balance in a single statement; Postgres
// row locking serializes concurrent writers.
func (p *Postgres) UpdateBalance(userID int64, balance decimal.Decimal) error {
	result, err := p.DB.Exec("UPDATE users SET balance = $1 WHERE id = $2", balance, userID)
	if err != nil {
		return fmt.Errorf("error updating user balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for balance update: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (p *Postgres) UpsertCredential(cred domain.Credential) error {
	_, err := p.DB.Exec(
		`INSERT INTO credentials (user_id, access_token, refresh_token, expires_at, link_code)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     expires_at = EXCLUDED.expires_at,
		     link_code = EXCLUDED.link_code,
		     created_at = now()`,
		cred.UserID, cred.AccessToken, nullable(cred.RefreshToken), cred.ExpiresAt, nullable(cred.LinkCode),
	)
	if err != nil {
		return fmt.Errorf("error storing credential: %w", err)
	}

	return nil
}

func (p *Postgres) Credential(userID int64) (*domain.Credential, error) {
	row := p.DB.QueryRow(
		"SELECT user_id, access_token, refresh_token, expires_at, link_code, created_at FROM credentials WHERE user_id = $1",
		userID,
	)

	var cred domain.Credential
	var refresh, linkCode sql.NullString
	err := row.Scan(&cred.UserID, &cred.AccessToken, &refresh, &cred.ExpiresAt, &linkCode, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("error fetching credential: %w", err)
	}

	cred.RefreshToken = refresh.String
	cred.LinkCode = linkCode.String

	return &cred, nil
}

// ConsumeLinkCode redeems a one-time link code, clearing it in the same
// statement so it cannot be replayed.
func (p *Postgres) ConsumeLinkCode(code string) (int64, error) {
	var userID int64
	err := p.DB.QueryRow(
		"UPDATE credentials SET link_code = NULL WHERE link_code = $1 RETURNING user_id",
		code,
	).Scan(&userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrLinkCodeNotFound
		}
		return 0, fmt.Errorf("error consuming link code: %w", err)
	}

	return userID, nil
}

func (p *Postgres) ReconcileTargets() ([]domain.ReconcileTarget, error) {
	rows, err := p.DB.Query(
		"SELECT u.id, c.access_token FROM users u JOIN credentials c ON c.user_id = u.id WHERE c.expires_at > now()",
	)
	if err != nil {
		return nil, fmt.Errorf("error fetching reconcile targets: %w", err)
	}
	defer closeRows(rows)

	var targets []domain.ReconcileTarget
	for rows.Next() {
		var t domain.ReconcileTarget
		if err := rows.Scan(&t.UserID, &t.AccessToken); err != nil {
			return nil, fmt.Errorf("error scanning reconcile target: %w", err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over reconcile targets: %w", err)
	}

	return targets, nil
}

func (p *Postgres) CreateTransaction(t domain.Transaction) (int64, error) {
	var id int64
	err := p.DB.QueryRow(
		`INSERT INTO transactions (user_id, amount, currency, kind, status, correlation_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.UserID, t.Amount, t.Currency, t.Kind, t.Status, t.CorrelationID,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("error creating transaction: %w", err)
	}

	return id, nil
}

// Transactions returns a page of the user's ledger, newest first. A zero
// cursor starts from the top; otherwise only rows older than the cursor id
// are returned.
func (p *Postgres) Transactions(userID, cursorID int64, limit int) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, amount, currency, kind, status, correlation_id, created_at
	          FROM transactions
	          WHERE user_id = $1 AND ($2 = 0 OR id < $2)
	          ORDER BY created_at DESC, id DESC
	          LIMIT $3`

	rows, err := p.DB.Query(query, userID, cursorID, limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Kind, &t.Status, &t.CorrelationID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

// SettleTransaction moves a pending transaction to completed or failed. The
// transition is one-way; settling anything but a pending row is a conflict.
func (p *Postgres) SettleTransaction(correlationID string, status domain.TransactionStatus) error {
	tx, err := p.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	var current domain.TransactionStatus
	err = tx.QueryRow("SELECT status FROM transactions WHERE correlation_id = $1 FOR UPDATE", correlationID).
		Scan(&current)

	if err != nil {
		rollback(tx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTransactionNotFound
		}
		return fmt.Errorf("error fetching transaction for settlement: %w", err)
	}

	if current != domain.StatusPending {
		logger.Log.Warn("transaction already settled",
			logger.String("correlation_id", correlationID),
			logger.String("status", string(current)),
		)
		rollback(tx)
		return domain.ErrAlreadySettled
	}

	_, err = tx.Exec("UPDATE transactions SET status = $1 WHERE correlation_id = $2", status, correlationID)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error settling transaction: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error committing settlement: %w", err)
	}

	return nil
}

func (p *Postgres) CreateSession(userID int64, sessionID string) error {
	_, err := p.DB.Exec(
		"INSERT INTO sessions (user_id, session_id, active) VALUES ($1, $2, true)",
		userID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}

	return nil
}

func (p *Postgres) DeactivateSession(sessionID string) error {
	_, err := p.DB.Exec("UPDATE sessions SET active = false WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("error deactivating session: %w", err)
	}

	return nil
}

func (p *Postgres) DeactivateUserSessions(userID int64) error {
	_, err := p.DB.Exec("UPDATE sessions SET active = false WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("error deactivating user sessions: %w", err)
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func closeRows(rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.Log.Error("error closing rows", logger.Error(err))
	}
}

func rollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil {
		logger.Log.Error(transactionRollbackError, logger.Error(err))
	}
}
