// Package fetch wraps request operations with time-boxed result caching,
// in-flight request de-duplication, and optional polling.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Operation performs one fetch, typically a REST call.
type Operation func(ctx context.Context) (any, error)

// inflightCall is one outstanding operation shared by every caller that
// asked for the same key while it was running.
type inflightCall struct {
	done chan struct{}
	val  any
	err  error
}

// Cache de-duplicates in-flight operations by key and serves results from
// a TTL store. It is an injectable service, not package-level state: two
// call sites share entries only when they share a Cache and agree on what
// a key means.
type Cache struct {
	store  Store
	logger zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

// New creates a Cache over the given store.
func New(store Store, logger zerolog.Logger) *Cache {
	return &Cache{
		store:    store,
		logger:   logger.With().Str("component", "fetch").Logger(),
		inflight: make(map[string]*inflightCall),
	}
}

// Do runs op, subject to caching and de-duplication:
//
//   - with a key and ttl > 0, an unexpired cached result is returned
//     without invoking op;
//   - with a key, a second caller arriving while op is outstanding waits
//     for that call's result instead of starting another — at most one
//     operation is ever in flight per key;
//   - otherwise op runs; its result is cached when ttl > 0, and the
//     in-flight registration is removed regardless of outcome, so an
//     error never blocks an immediate retry.
//
// An empty key disables both caching and de-duplication.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, op Operation) (any, error) {
	if key == "" {
		return op(ctx)
	}

	if ttl > 0 {
		if val, ok := c.store.Get(ctx, key); ok {
			c.logger.Debug().Str("key", key).Msg("cache hit")
			return val, nil
		}
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		c.logger.Debug().Str("key", key).Msg("joining in-flight request")
		select {
		case <-call.done:
			return call.val, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	val, err := op(ctx)
	if err == nil && ttl > 0 {
		c.store.Set(ctx, key, val, ttl)
	}

	call.val = val
	call.err = err
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return val, err
}

// Clear invalidates the cached result under key. Explicit escape hatch;
// nothing calls it implicitly.
func (c *Cache) Clear(ctx context.Context, key string) {
	c.store.Delete(ctx, key)
}

// ClearAll invalidates every cached result.
func (c *Cache) ClearAll(ctx context.Context) {
	c.store.Clear(ctx)
}

// Poller repeats a fetch on an interval until stopped.
type Poller struct {
	stop chan struct{}
	once sync.Once
}

// Stop cancels the poll timer. No result is delivered after Stop returns:
// an operation already dispatched still settles for de-duplication
// purposes, but its result is silently absorbed.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
}

// Poll runs Do on a repeating interval and hands each result to onResult.
// With immediate set, one fetch runs right away. A non-positive interval
// means the immediate fetch (if any) is the only one.
func (c *Cache) Poll(key string, ttl, interval time.Duration, immediate bool, op Operation, onResult func(any, error)) *Poller {
	p := &Poller{stop: make(chan struct{})}

	go func() {
		if immediate {
			c.pollOnce(p, key, ttl, op, onResult)
		}
		if interval <= 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.pollOnce(p, key, ttl, op, onResult)
			case <-p.stop:
				return
			}
		}
	}()
	return p
}

func (c *Cache) pollOnce(p *Poller, key string, ttl time.Duration, op Operation, onResult func(any, error)) {
	val, err := c.Do(context.Background(), key, ttl, op)
	select {
	case <-p.stop:
		// Stopped while the operation was in flight; drop the result.
	default:
		if onResult != nil {
			onResult(val, err)
		}
	}
}
