package worldoffice

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCityCacheTTL = 24 * time.Hour
	cityListTimeout     = 10 * time.Second
)

// CityLister is the slice of the vendor client the cache needs.
type CityLister interface {
	ListCities(ctx context.Context) ([]City, error)
}

// CityCache holds a periodically refreshed snapshot of the vendor's city
// directory and answers typo-tolerant name lookups for invoicing.
//
// The snapshot is replaced wholesale on each successful refresh; a failed
// refresh keeps the last known good snapshot. Concurrent lookups during a
// refresh may observe either snapshot, which is acceptable for city data.
type CityCache struct {
	client CityLister
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu        sync.RWMutex
	cities    []City
	lastFetch time.Time // zero value means never fetched
}

// CityCacheOption configures the cache
type CityCacheOption func(*CityCache)

// WithTTL overrides the default 24h snapshot TTL
func WithTTL(ttl time.Duration) CityCacheOption {
	return func(c *CityCache) {
		c.ttl = ttl
	}
}

// WithClock injects a clock, used by tests to control snapshot aging
func WithClock(now func() time.Time) CityCacheOption {
	return func(c *CityCache) {
		c.now = now
	}
}

// WithLogger sets the cache logger
func WithLogger(logger *zap.Logger) CityCacheOption {
	return func(c *CityCache) {
		c.logger = logger
	}
}

// NewCityCache creates an empty cache backed by the given client.
func NewCityCache(client CityLister, opts ...CityCacheOption) *CityCache {
	c := &CityCache{
		client: client,
		ttl:    defaultCityCacheTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches a fresh snapshot unless the current one is younger than the
// TTL (force skips the age check). It never fails hard: on vendor error or an
// empty listing the previous snapshot is kept, and the return value reports
// whether the cache holds any snapshot at all. Callers have a hard-coded
// default city to fall back on, so a degraded cache is not fatal.
func (c *CityCache) Refresh(ctx context.Context, force bool) bool {
	c.mu.RLock()
	populated := len(c.cities) > 0
	fresh := !c.lastFetch.IsZero() && c.now().Sub(c.lastFetch) < c.ttl
	c.mu.RUnlock()

	if !force && populated && fresh {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, cityListTimeout)
	defer cancel()

	cities, err := c.client.ListCities(ctx)
	if err != nil {
		c.logger.Warn("city refresh failed, keeping previous snapshot",
			zap.Error(err),
			zap.Int("cached", c.Size()))
		return populated
	}
	if len(cities) == 0 {
		c.logger.Warn("city refresh returned empty listing, keeping previous snapshot",
			zap.Int("cached", c.Size()))
		return populated
	}

	for i := range cities {
		cities[i].NormalizedName = NormalizeCityName(cities[i].Name)
	}

	c.mu.Lock()
	c.cities = cities
	c.lastFetch = c.now()
	c.mu.Unlock()

	c.logger.Info("city snapshot refreshed", zap.Int("cities", len(cities)))
	return true
}

// minSubstringQuery is the minimum normalized query length for the substring
// phase. Shorter queries ("SAN") match dozens of cities with no meaningful
// tie-break, so they only resolve through exact matches.
const minSubstringQuery = 3

// FindByName resolves a city by name. Exact normalized match wins; otherwise
// the first listing-order entry where either name contains the other is
// returned, which callers must treat as best-effort. Empty and placeholder
// inputs resolve to nil without touching the network.
func (c *CityCache) FindByName(ctx context.Context, name string) *City {
	query := NormalizeCityName(name)
	if query == "" || query == "N/A" {
		return nil
	}

	if c.Size() == 0 {
		c.Refresh(ctx, false)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.cities {
		if c.cities[i].NormalizedName == query {
			city := c.cities[i]
			return &city
		}
	}

	if len([]rune(query)) < minSubstringQuery {
		return nil
	}
	for i := range c.cities {
		stored := c.cities[i].NormalizedName
		if strings.Contains(stored, query) || strings.Contains(query, stored) {
			city := c.cities[i]
			return &city
		}
	}

	return nil
}

// FindByID resolves a city by its vendor id, lazily refreshing when empty.
func (c *CityCache) FindByID(ctx context.Context, id int) *City {
	if c.Size() == 0 {
		c.Refresh(ctx, false)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.cities {
		if c.cities[i].ID == id {
			city := c.cities[i]
			return &city
		}
	}
	return nil
}

// Size returns the number of cached cities.
func (c *CityCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cities)
}

// Info describes the current cache state for the system endpoint.
type Info struct {
	Size      int           `json:"size"`
	LastFetch time.Time     `json:"last_fetch"`
	Age       time.Duration `json:"age_ms"`
	TTL       time.Duration `json:"ttl_ms"`
	Expired   bool          `json:"is_expired"`
}

// Info reports cache state without side effects.
func (c *CityCache) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := Info{
		Size:      len(c.cities),
		LastFetch: c.lastFetch,
		TTL:       c.ttl,
		Expired:   true,
	}
	if !c.lastFetch.IsZero() {
		info.Age = c.now().Sub(c.lastFetch)
		info.Expired = info.Age >= c.ttl
	}
	return info
}
