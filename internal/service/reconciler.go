package service

import (
	"context"
	"time"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	reconcileWorkerCount = 5
	fetchTimeout         = 15 * time.Second
)

type reconcilerRepository interface {
	ReconcileTargets() ([]domain.ReconcileTarget, error)
	UpdateBalance(userID int64, balance decimal.Decimal) error
}

// BalancePublisher receives reconciled balances for real-time delivery.
type BalancePublisher interface {
	PublishBalance(userID int64, balance decimal.Decimal)
}

type balanceUpdate struct {
	userID  int64
	balance decimal.Decimal
}

// Reconciler periodically overwrites cached user balances from the external
// balance source. One user's failure never aborts the rest of the sweep.
type Reconciler struct {
	repo      reconcilerRepository
	gateway   AccountGateway
	publisher BalancePublisher
	interval  time.Duration
}

func NewReconciler(repo reconcilerRepository, gateway AccountGateway, publisher BalancePublisher, interval time.Duration) *Reconciler {
	return &Reconciler{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		interval:  interval,
	}
}

// Run starts the extractor, the worker pool and the updater, and blocks the
// calling goroutine only for wiring; all stages stop on ctx cancellation.
func (r *Reconciler) Run(ctx context.Context) {
	jobs := r.extractTargets(ctx)
	results := make(chan balanceUpdate, 1024)

	for i := 0; i < reconcileWorkerCount; i++ {
		go r.worker(ctx, jobs, results)
	}

	go r.updateBalances(ctx, results)
}

func (r *Reconciler) extractTargets(ctx context.Context) <-chan domain.ReconcileTarget {
	jobs := make(chan domain.ReconcileTarget, 1024)
	ticker := time.NewTicker(r.interval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				close(jobs)
				return
			case <-ticker.C:
				targets, err := r.repo.ReconcileTargets()
				if err != nil {
					logger.Log.Error("error while fetching reconcile targets", logger.Error(err))
					continue
				}

				logger.Log.Info("reconciliation sweep started", logger.Int("users", len(targets)))
				for _, target := range targets {
					select {
					case <-ctx.Done():
						ticker.Stop()
						close(jobs)
						return
					case jobs <- target:
					}
				}
			}
		}
	}()

	return jobs
}

func (r *Reconciler) worker(ctx context.Context, jobs <-chan domain.ReconcileTarget, results chan<- balanceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case target, ok := <-jobs:
			if !ok {
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			balance, err := r.gateway.Balance(fetchCtx, target.AccessToken)
			cancel()

			if err != nil {
				logger.Log.Error("error while fetching external balance",
					logger.Int64("user_id", target.UserID),
					logger.Error(err),
				)
				continue
			}

			results <- balanceUpdate{userID: target.UserID, balance: balance}
		}
	}
}

func (r *Reconciler) updateBalances(ctx context.Context, results <-chan balanceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-results:
			err := r.repo.UpdateBalance(update.userID, update.balance)
			if err != nil {
				logger.Log.Error("error while updating user balance",
					logger.Int64("user_id", update.userID),
					logger.Error(err),
				)
				continue
			}

			if r.publisher != nil {
				r.publisher.PublishBalance(update.userID, update.balance)
			}
		}
	}
}
