package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/deriv"
	"github.com/ekipchirchir/instatransfer/internal/postgres"
	"github.com/ekipchirchir/instatransfer/internal/service"
)

type App struct {
	Config *config.Config
	DB     *sql.DB

	store   *postgres.Postgres
	gateway *deriv.Client
	hub     *service.Hub
}

func New(cfg *config.Config) (*App, error) {
	dbPool, err := initDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		DB:      dbPool,
		store:   postgres.New(dbPool),
		gateway: deriv.New(cfg.DerivAPIURL),
		hub:     service.NewHub(),
	}, nil
}

func initDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		err := db.Close()
		if err != nil {
			return nil, fmt.Errorf("error closing database after ping failure: %w", err)
		}
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// Run starts the balance reconciliation pipeline; it returns immediately and
// the pipeline stops when ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	reconciler := service.NewReconciler(app.store, app.gateway, app.hub, app.Config.ReconcileInterval)
	reconciler.Run(ctx)
}
