package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToOwnSessionsOnly(t *testing.T) {
	hub := NewHub()

	mine, unsubMine := hub.Subscribe(1)
	defer unsubMine()
	theirs, unsubTheirs := hub.Subscribe(2)
	defer unsubTheirs()

	hub.PublishBalance(1, decimal.NewFromFloat(42.00))

	select {
	case payload := <-mine:
		assert.Contains(t, string(payload), "42.00")
	default:
		t.Fatal("subscriber of user 1 got nothing")
	}

	select {
	case <-theirs:
		t.Fatal("subscriber of user 2 must not see user 1 events")
	default:
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	unsubscribe()

	hub.PublishBalance(1, decimal.NewFromFloat(1.00))

	select {
	case _, ok := <-ch:
		require.False(t, ok, "no event may arrive after unsubscribe")
	default:
	}
}

func TestHubDropsWhenSessionIsSlow(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	// The subscriber buffer holds 32 events; everything beyond is dropped
	// rather than blocking the publisher.
	for i := 0; i < 100; i++ {
		hub.PublishBalance(1, decimal.NewFromInt(int64(i)))
	}

	assert.Len(t, ch, 32)
}
