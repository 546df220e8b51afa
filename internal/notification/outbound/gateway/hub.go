package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"go.uber.org/atomic"
)

// Hub is the in-app gateway. It fans messages out to the live SSE
// subscribers of the recipient. A user without a subscriber still has the
// notification in the inbox, so Send never fails for lack of listeners.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[chan entity.OutboundMessage]struct{}
	buffer int
	done   chan struct{}

	closed  atomic.Bool
	live    atomic.Int64
	dropped atomic.Int64
}

var _ io.Closer = (*Hub)(nil)

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 16
	}
	return &Hub{subs: make(map[int64]map[chan entity.OutboundMessage]struct{}), buffer: buffer, done: make(chan struct{})}
}

// Subscribe returns a channel that receives the user's messages until ctx is done.
func (h *Hub) Subscribe(ctx context.Context, userID int64) <-chan entity.OutboundMessage {
	ch := make(chan entity.OutboundMessage, h.buffer)

	h.mu.Lock()
	if h.closed.Load() {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan entity.OutboundMessage]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.live.Inc()
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			h.unsubscribe(userID, ch)
		case <-h.done:
		}
	}()

	return ch
}

func (h *Hub) unsubscribe(userID int64, ch chan entity.OutboundMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
	close(ch)
	h.live.Dec()
}

// Send never blocks; a subscriber whose buffer is full misses the message.
func (h *Hub) Send(ctx context.Context, msg entity.OutboundMessage) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[msg.UserID] {
		select {
		case ch <- msg:
		default:
			h.dropped.Inc()
			slog.WarnContext(ctx, "sse subscriber is slow, message dropped", "user_id", msg.UserID, "delivery_id", msg.DeliveryID)
		}
	}

	return nil
}

// Subscribers is the number of open streams.
func (h *Hub) Subscribers() int64 {
	return h.live.Load()
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(h.done)
	for userID, set := range h.subs {
		for ch := range set {
			close(ch)
			h.live.Dec()
		}
		delete(h.subs, userID)
	}

	return nil
}
