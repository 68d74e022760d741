package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeReconcileRepo struct {
	mu       sync.Mutex
	targets  []domain.ReconcileTarget
	balances map[int64]decimal.Decimal
}

func (f *fakeReconcileRepo) ReconcileTargets() ([]domain.ReconcileTarget, error) {
	return f.targets, nil
}

func (f *fakeReconcileRepo) UpdateBalance(userID int64, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] = balance
	return nil
}

func (f *fakeReconcileRepo) balance(userID int64) (decimal.Decimal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[userID]
	return b, ok
}

type fakeGateway struct {
	balances map[string]decimal.Decimal
	failing  map[string]bool
}

func (f *fakeGateway) Account(_ context.Context, token string) (*domain.AccountInfo, error) {
	return &domain.AccountInfo{Account: "CR" + token}, nil
}

func (f *fakeGateway) Balance(_ context.Context, token string) (decimal.Decimal, error) {
	if f.failing[token] {
		return decimal.Zero, errors.New("gateway down")
	}
	return f.balances[token], nil
}

func TestReconcilerIsolatesPerUserFailures(t *testing.T) {
	repo := &fakeReconcileRepo{
		targets: []domain.ReconcileTarget{
			{UserID: 1, AccessToken: "tok-1"},
			{UserID: 2, AccessToken: "tok-2"},
			{UserID: 3, AccessToken: "tok-3"},
		},
		balances: make(map[int64]decimal.Decimal),
	}
	gateway := &fakeGateway{
		balances: map[string]decimal.Decimal{
			"tok-1": decimal.NewFromFloat(10.00),
			"tok-3": decimal.NewFromFloat(30.00),
		},
		failing: map[string]bool{"tok-2": true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := NewReconciler(repo, gateway, nil, 10*time.Millisecond)
	reconciler.Run(ctx)

	assert.Eventually(t, func() bool {
		_, ok1 := repo.balance(1)
		_, ok3 := repo.balance(3)
		return ok1 && ok3
	}, 2*time.Second, 10*time.Millisecond, "healthy users must be reconciled")

	b1, _ := repo.balance(1)
	b3, _ := repo.balance(3)
	assert.True(t, b1.Equal(decimal.NewFromFloat(10.00)))
	assert.True(t, b3.Equal(decimal.NewFromFloat(30.00)))

	_, ok2 := repo.balance(2)
	assert.False(t, ok2, "a failing user's balance must stay untouched")
}

func TestReconcilerPublishesUpdates(t *testing.T) {
	repo := &fakeReconcileRepo{
		targets:  []domain.ReconcileTarget{{UserID: 7, AccessToken: "tok-7"}},
		balances: make(map[int64]decimal.Decimal),
	}
	gateway := &fakeGateway{
		balances: map[string]decimal.Decimal{"tok-7": decimal.NewFromFloat(99.50)},
		failing:  map[string]bool{},
	}

	hub := NewHub()
	events, unsubscribe := hub.Subscribe(7)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := NewReconciler(repo, gateway, hub, 10*time.Millisecond)
	reconciler.Run(ctx)

	select {
	case payload := <-events:
		assert.Contains(t, string(payload), "balance_updated")
		assert.Contains(t, string(payload), "99.50")
	case <-time.After(2 * time.Second):
		t.Fatal("no balance event delivered")
	}
}

func TestReconcilerStopsOnCancel(t *testing.T) {
	repo := &fakeReconcileRepo{balances: make(map[int64]decimal.Decimal)}
	gateway := &fakeGateway{balances: map[string]decimal.Decimal{}, failing: map[string]bool{}}

	ctx, cancel := context.WithCancel(context.Background())
	reconciler := NewReconciler(repo, gateway, nil, time.Millisecond)
	reconciler.Run(ctx)

	cancel()
	// Give the goroutines a beat to observe cancellation.
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, repo.balances)
}
