package service

import (
	"encoding/json"
	"sync"

	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"github.com/shopspring/decimal"
)

// Hub fans reconciled balance updates out to the live sessions of each user.
// Subscribers own a buffered channel; a slow consumer drops events instead of
// blocking the reconciler.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan []byte]struct{}),
	}
}

// Subscribe registers a session channel for the user and returns it together
// with the matching unsubscribe function.
func (h *Hub) Subscribe(userID int64) (<-chan []byte, func()) {
	ch := make(chan []byte, 32)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan []byte]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subscribers[userID], ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
		h.mu.Unlock()
	}

	return ch, unsubscribe
}

type balanceEvent struct {
	Event   string `json:"event"`
	Balance string `json:"balance"`
}

func (h *Hub) PublishBalance(userID int64, balance decimal.Decimal) {
	payload, err := json.Marshal(balanceEvent{
		Event:   "balance_updated",
		Balance: balance.StringFixed(2),
	})
	if err != nil {
		logger.Log.Error("error encoding balance event", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- payload:
		default:
			logger.Log.Warn("dropping balance event for slow session", logger.Int64("user_id", userID))
		}
	}
}
