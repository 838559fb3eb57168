// Package fxrate caches exchange rates with a freshness TTL.
package fxrate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
)

// Freshness describes the state of a cache lookup.
type Freshness int

const (
	// RateAbsent means the pair has never been fetched.
	RateAbsent Freshness = iota
	// RateFresh means the rate is within its TTL.
	RateFresh
	// RateStale means the rate exists but its TTL has elapsed.
	RateStale
)

// Provider supplies rates from an external source. A failed fetch must leave
// the cache untouched, so implementations return an error rather than a zero
// rate.
type Provider interface {
	FetchRate(ctx context.Context, base, quote string) (model.FxRate, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, base, quote string) (model.FxRate, error)

// FetchRate calls f.
func (f ProviderFunc) FetchRate(ctx context.Context, base, quote string) (model.FxRate, error) {
	return f(ctx, base, quote)
}

// Cache holds the latest rate per currency pair in memory and persists every
// successful refresh through the repository, so freshness survives restarts.
// Lookups never touch the network; refreshes go through Refresh, which
// collapses concurrent calls for the same pair into one provider request.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]model.FxRate

	ttl      time.Duration
	repo     *repository.FxRateRepository
	provider Provider
	group    singleflight.Group

	now func() time.Time
}

// New creates a cache over the given repository and provider. Rates older
// than ttl read as stale.
func New(repo *repository.FxRateRepository, provider Provider, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]model.FxRate),
		ttl:      ttl,
		repo:     repo,
		provider: provider,
		now:      time.Now,
	}
}

func pairKey(base, quote string) string {
	return base + "/" + quote
}

// Load warms the cache from the persisted rates. Call once at startup.
func (c *Cache) Load(ctx context.Context) error {
	rates, err := c.repo.ListRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cached rates: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rate := range rates {
		c.entries[pairKey(rate.Base, rate.Quote)] = rate
	}

	return nil
}

// Lookup returns the cached rate for a pair and its freshness. It never
// triggers a refresh, so readers are never blocked by provider latency.
func (c *Cache) Lookup(base, quote string) (model.FxRate, Freshness) {
	c.mu.RLock()
	rate, ok := c.entries[pairKey(base, quote)]
	c.mu.RUnlock()

	if !ok {
		return model.FxRate{}, RateAbsent
	}
	if c.now().Sub(rate.FetchedAt) >= c.ttl {
		return rate, RateStale
	}
	return rate, RateFresh
}

// Refresh fetches a pair from the provider, persists it and updates the
// cache. Concurrent refreshes of the same pair share one provider call. On
// failure the previously cached rate stays exactly as it was.
func (c *Cache) Refresh(ctx context.Context, base, quote string) (model.FxRate, error) {
	result, err, _ := c.group.Do(pairKey(base, quote), func() (any, error) {
		rate, err := c.provider.FetchRate(ctx, base, quote)
		if err != nil {
			return model.FxRate{}, err
		}

		if err := c.repo.UpsertRate(ctx, rate); err != nil {
			return model.FxRate{}, err
		}

		c.mu.Lock()
		c.entries[pairKey(base, quote)] = rate
		c.mu.Unlock()

		return rate, nil
	})
	if err != nil {
		return model.FxRate{}, err
	}

	return result.(model.FxRate), nil
}

// Statuses returns every cached rate annotated with its freshness, sorted by
// pair for stable output.
func (c *Cache) Statuses() []model.FxRateStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	statuses := make([]model.FxRateStatus, 0, len(c.entries))
	for _, rate := range c.entries {
		statuses = append(statuses, model.FxRateStatus{
			FxRate: rate,
			Stale:  c.now().Sub(rate.FetchedAt) >= c.ttl,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Base != statuses[j].Base {
			return statuses[i].Base < statuses[j].Base
		}
		return statuses[i].Quote < statuses[j].Quote
	})

	return statuses
}
