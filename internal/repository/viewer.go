package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// Defaults for viewer sessions.
const (
	DefaultSessionTTL      = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// ViewerRepository keeps one ledger per viewer in an expiring in-memory
// cache. Nothing is persisted: an expired or evicted session starts over
// from the catalog's base counts.
type ViewerRepository struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewViewerRepository creates a store whose sessions live for ttl after
// their last write.
func NewViewerRepository(ttl, cleanupInterval time.Duration) *ViewerRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &ViewerRepository{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Get returns the viewer's ledger if the session is alive.
func (r *ViewerRepository) Get(_ context.Context, viewerID string) (*model.Ledger, bool) {
	value, found := r.cache.Get(viewerID)
	if !found {
		return nil, false
	}
	ledger, ok := value.(*model.Ledger)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting ledger", "viewer", viewerID)
		return nil, false
	}
	return ledger, true
}

// Put stores the ledger and restarts its expiry.
func (r *ViewerRepository) Put(_ context.Context, ledger *model.Ledger) {
	r.cache.Set(ledger.ViewerID, ledger, r.ttl)
}

// Delete ends a viewer session.
func (r *ViewerRepository) Delete(_ context.Context, viewerID string) {
	r.cache.Delete(viewerID)
}

// Count returns the number of sessions held, including expired ones the
// janitor has not swept yet.
func (r *ViewerRepository) Count() int {
	return r.cache.ItemCount()
}
