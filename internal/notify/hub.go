// Package notify delivers viewer notices to live listeners.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

const listenerBuffer = 16

// Hub routes each notice to the listeners of the viewer it is addressed to.
// Delivery is best effort: a listener whose buffer is full misses the
// notice, and nothing is kept for viewers who are not connected.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]map[chan model.Notice]struct{}
	closed    bool
}

// NewHub creates an open hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[chan model.Notice]struct{})}
}

// Notify stamps n with an id and time if missing and hands it to the
// viewer's listeners without blocking.
func (h *Hub) Notify(_ context.Context, n model.Notice) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for ch := range h.listeners[n.ViewerID] {
		select {
		case ch <- n:
			delivered++
		default:
			log.Warn(log.CatNotify, "listener full, notice dropped", "viewer", n.ViewerID, "title", n.Title)
		}
	}
	log.Debug(log.CatNotify, "notice", "viewer", n.ViewerID, "title", n.Title, "delivered", delivered)
}

// Subscribe streams the notices addressed to viewerID. The channel closes
// when ctx ends or the hub is closed.
func (h *Hub) Subscribe(ctx context.Context, viewerID string) <-chan model.Notice {
	ch := make(chan model.Notice, listenerBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	set, ok := h.listeners[viewerID]
	if !ok {
		set = make(map[chan model.Notice]struct{})
		h.listeners[viewerID] = set
	}
	set[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		h.remove(viewerID, ch)
	}()
	return ch
}

func (h *Hub) remove(viewerID string, ch chan model.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.listeners[viewerID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.listeners, viewerID)
	}
	close(ch)
}

// Listeners returns the number of open subscriptions.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.listeners {
		n += len(set)
	}
	return n
}

// Close ends every subscription. Later subscriptions are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.listeners {
		for ch := range set {
			close(ch)
		}
	}
	h.listeners = make(map[string]map[chan model.Notice]struct{})
}
