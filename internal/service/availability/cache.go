package availability

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

// DefaultTTL is how long a computed slot list may be served without
// recomputation. Display freshness only; the booking path re-validates
// against the store inside its own transaction.
const DefaultTTL = 120 * time.Second

// Cache memoizes Engine results per (doctor, date). Invalidate is called
// synchronously on every booking-state change, so a get after an invalidate
// always recomputes.
type Cache struct {
	engine *Engine
	store  *gocache.Cache
	ttl    time.Duration
	m      *metrics.Metrics
}

func NewCache(engine *Engine, ttl time.Duration, m *metrics.Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		engine: engine,
		store:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		m:      m,
	}
}

func cacheKey(doctorID uuid.UUID, date time.Time) string {
	return doctorID.String() + "|" + model.DateOnly(date).Format("2006-01-02")
}

// Get returns the cached slot list if fresh, otherwise recomputes and
// stores it. Errors are never cached.
func (c *Cache) Get(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	key := cacheKey(doctorID, date)
	if cached, ok := c.store.Get(key); ok {
		if c.m != nil {
			c.m.CacheLookups.WithLabelValues("hit").Inc()
		}
		return cached.([]model.TimeSlot), nil
	}

	if c.m != nil {
		c.m.CacheLookups.WithLabelValues("miss").Inc()
	}
	slots, err := c.engine.GetAvailableSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, slots, c.ttl)
	return slots, nil
}

// Invalidate drops every cached entry for the doctor, all dates. It returns
// only after the entries are gone, so the next Get recomputes from the store.
func (c *Cache) Invalidate(doctorID uuid.UUID) {
	prefix := doctorID.String() + "|"
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}
