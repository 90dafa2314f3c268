// Package statusService holds the core of the exporter: the TTL-gated
// status cache and the builder that turns the voice server's flat channel
// and client lists into a rooted topology tree.
package statusService

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/metrics"
	"github.com/nikhil/tsview/internal/models"
)

// DefaultTTL is how long a snapshot is served before the voice server is
// contacted again.
const DefaultTTL = 20 * time.Second

// Source produces a fresh topology view from the remote server. Calls are
// blocking and may take a full network round-trip.
type Source interface {
	FetchStatus(ctx context.Context) (*models.ServerInfo, error)
}

// Cache holds the last successfully built snapshot together with its build
// time. One instance is shared by all request handlers for the process
// lifetime. Snapshots are immutable once installed: readers either see the
// previous snapshot or the new one in full, never a half-built tree.
type Cache struct {
	src Source
	ttl time.Duration
	log *logger.Logger
	now func() time.Time // injectable clock

	flight singleflight.Group

	mu      sync.RWMutex
	builtAt time.Time
	info    *models.ServerInfo

	notify func(*models.ServerInfo)
}

// NewCache builds a cache around src. A non-positive ttl selects
// DefaultTTL.
func NewCache(src Source, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		src: src,
		ttl: ttl,
		log: log,
		now: time.Now,
	}
}

// OnRefresh registers fn to run after every successful refresh with the
// newly installed snapshot. Must be set before the cache starts serving.
func (c *Cache) OnRefresh(fn func(*models.ServerInfo)) {
	c.notify = fn
}

// GetOrRefresh returns the current snapshot, refreshing it from the remote
// server first when it is older than the TTL. Concurrent stale callers
// share a single in-flight refresh instead of each querying the server.
// A failed refresh leaves the previous snapshot and timestamp untouched
// and reports the error; the next call will retry immediately.
func (c *Cache) GetOrRefresh(ctx context.Context) (*models.ServerInfo, error) {
	if info, ok := c.fresh(); ok {
		metrics.CacheHits.Inc()
		return info, nil
	}
	metrics.CacheMisses.Inc()

	v, err, _ := c.flight.Do("status", func() (interface{}, error) {
		// A refresh may have completed while this caller waited on the
		// flight; serve it instead of querying again.
		if info, ok := c.fresh(); ok {
			return info, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ServerInfo), nil
}

// fresh returns the snapshot when it exists and is within the TTL.
func (c *Cache) fresh() (*models.ServerInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil || c.now().Sub(c.builtAt) > c.ttl {
		return nil, false
	}
	return c.info, true
}

// refresh performs the remote fetch outside the lock, so slow network
// round-trips never block concurrent fast-path readers, then installs the
// result with a single write-locked swap.
func (c *Cache) refresh(ctx context.Context) (*models.ServerInfo, error) {
	start := time.Now()
	info, err := c.src.FetchStatus(ctx)
	if err != nil {
		// Stale data outlives a failed refresh: snapshot and timestamp
		// stay as they were, so the next caller retries right away.
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		c.log.Error("status refresh failed", "error", err)
		return nil, err
	}
	metrics.RefreshesTotal.WithLabelValues("success").Inc()
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	channelCount, clientCount := countTree(info.Channels)
	metrics.SnapshotChannels.Set(float64(channelCount))
	metrics.SnapshotClients.Set(float64(clientCount))

	c.mu.Lock()
	c.info = info
	c.builtAt = c.now()
	c.mu.Unlock()

	c.log.Info("snapshot refreshed", "channels", channelCount, "clients", clientCount)

	if c.notify != nil {
		c.notify(info)
	}
	return info, nil
}
