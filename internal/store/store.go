// Package store implements dashboard aggregate caching across two tiers: a
// process-lifetime memory tier and a durable tier that survives restarts.
// The durable tier is the source of truth; the memory tier is a read-through
// cache hydrated lazily. No failure crosses this package's boundary as an
// error: durable problems are logged and surface as false/nil results so the
// UI can degrade instead of unwinding.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"benchboard/internal/cache"
	"benchboard/internal/core"
	"benchboard/internal/log"
	"benchboard/internal/metrics"
)

// DataVersion tags every cache entry and the export envelope.
const DataVersion = "1.0"

const (
	// SoftTTL bounds how long the memory tier serves an entry before
	// re-reading the durable tier. Only the memory tier enforces it.
	SoftTTL = 24 * time.Hour

	// Retention is the hard limit after which entries become cleanup
	// candidates on both tiers.
	Retention = 7 * 24 * time.Hour

	// memoryTierSize caps the memory tier; evictions only cost a re-read.
	memoryTierSize = 64
)

// Entry is the cache envelope around one dashboard's aggregate. Metadata
// lives here, never inside the aggregate payload.
type Entry struct {
	DashboardID string
	CreatedAt   int64 // milliseconds since epoch
	Version     string
	Aggregate   core.Aggregate
}

// Age returns how long ago the entry was created.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.CreatedAt))
}

// DurableRepository is the durable-tier port. storage.SQLiteRepository is the
// production implementation; tests use in-memory fakes.
type DurableRepository interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, dashboardID string) (*Entry, error)
	Delete(ctx context.Context, dashboardID string) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context) ([]Entry, error)
	LastUpdated(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff int64) ([]string, error)
	ReplaceAll(ctx context.Context, entries []Entry, lastUpdated int64) error
}

// Stats summarizes both tiers for the UI.
type Stats struct {
	TotalDashboards  int      `json:"totalDashboards"`
	CachedDashboards int      `json:"cachedDashboards"`
	LastUpdated      int64    `json:"lastUpdated"`
	DashboardIDs     []string `json:"dashboardIds"`
}

// Store owns both cache tiers. The mutex serializes read-modify-write
// sequences across them; individual tier operations are safe on their own,
// the combination is not.
type Store struct {
	mu     sync.Mutex
	mem    *cache.TTLCache[Entry]
	repo   DurableRepository
	logger *log.Logger
	now    func() time.Time
}

// New builds a store over the given durable repository. Construct once at
// process start; tests construct their own with a fake repository.
func New(repo DurableRepository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		mem:    cache.NewTTLCache[Entry](memoryTierSize, SoftTTL),
		repo:   repo,
		logger: logger.WithComponent(log.ComponentStore),
		now:    time.Now,
	}
}

// Save wraps the aggregate in a fresh envelope, writes the durable tier and
// mirrors the memory tier. Returns false when the durable write fails; the
// memory mirror is kept either way so callers can run memory-only.
func (s *Store) Save(ctx context.Context, dashboardID string, agg core.Aggregate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		DashboardID: dashboardID,
		CreatedAt:   s.now().UnixMilli(),
		Version:     DataVersion,
		Aggregate:   agg.Clone(),
	}
	s.mem.Set(dashboardID, entry)

	if err := s.repo.Put(ctx, entry); err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Durable write failed, entry is memory-only",
			log.FieldDashboardID, dashboardID, log.FieldError, err)
		return false
	}

	s.logger.DebugContext(ctx, "Dashboard data saved",
		log.FieldDashboardID, dashboardID, log.FieldVersion, entry.Version)
	return true
}

// Load returns the aggregate for a dashboard, or nil when absent in both
// tiers. Memory hits older than SoftTTL are evicted and re-read from the
// durable tier; durable hits re-populate the memory tier regardless of age.
func (s *Store) Load(ctx context.Context, dashboardID string) core.Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.mem.Peek(dashboardID); ok {
		if entry.Age(s.now()) <= SoftTTL {
			metrics.CacheHits.WithLabelValues(metrics.TierMemory).Inc()
			return entry.Aggregate.Clone()
		}
		s.mem.Delete(dashboardID)
	}
	metrics.CacheMisses.WithLabelValues(metrics.TierMemory).Inc()

	entry, err := s.repo.Get(ctx, dashboardID)
	if err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Durable read failed",
			log.FieldDashboardID, dashboardID, log.FieldError, err,
			log.FieldOperation, log.OpLoad)
		return nil
	}
	if entry == nil {
		metrics.CacheMisses.WithLabelValues(metrics.TierDurable).Inc()
		return nil
	}

	metrics.CacheHits.WithLabelValues(metrics.TierDurable).Inc()
	s.mem.Set(dashboardID, *entry)
	return entry.Aggregate.Clone()
}

// HasData reports whether either tier holds an entry, ignoring expiry.
func (s *Store) HasData(ctx context.Context, dashboardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mem.Peek(dashboardID); ok {
		return true
	}
	entry, err := s.repo.Get(ctx, dashboardID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Durable read failed",
			log.FieldDashboardID, dashboardID, log.FieldError, err)
		return false
	}
	return entry != nil
}

// Clear removes a dashboard from both tiers. Idempotent: clearing an absent
// entry still returns true. Only a durable failure returns false.
func (s *Store) Clear(ctx context.Context, dashboardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.Delete(dashboardID)
	if err := s.repo.Delete(ctx, dashboardID); err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Durable delete failed",
			log.FieldDashboardID, dashboardID, log.FieldError, err,
			log.FieldOperation, log.OpClear)
		return false
	}
	return true
}

// ClearAll wipes the memory tier and the entire durable namespace.
func (s *Store) ClearAll(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.Purge()
	if err := s.repo.DeleteAll(ctx); err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Durable wipe failed", log.FieldError, err)
		return false
	}
	s.logger.InfoContext(ctx, "All dashboard data cleared")
	return true
}

// CleanupOldData deletes durable entries older than Retention along with
// their memory mirrors. Returns true iff at least one entry was removed.
func (s *Store) CleanupOldData(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-Retention).UnixMilli()
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Retention cleanup failed", log.FieldError, err)
		return false
	}
	for _, id := range removed {
		s.mem.Delete(id)
	}
	if len(removed) > 0 {
		s.logger.InfoContext(ctx, "Old dashboard data removed",
			log.FieldEntryCount, len(removed))
	}
	return len(removed) > 0
}

// Stats reports durable and memory tier counts plus the known dashboard ids.
// Durable failures yield memory-only stats.
func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		CachedDashboards: s.mem.Size(),
		DashboardIDs:     []string{},
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Durable list failed", log.FieldError, err)
		stats.DashboardIDs = s.mem.Keys()
		sort.Strings(stats.DashboardIDs)
		return stats
	}
	stats.TotalDashboards = len(entries)
	for _, e := range entries {
		stats.DashboardIDs = append(stats.DashboardIDs, e.DashboardID)
	}
	sort.Strings(stats.DashboardIDs)

	if last, err := s.repo.LastUpdated(ctx); err == nil {
		stats.LastUpdated = last
	}
	return stats
}

// AgeMinutes returns how many minutes ago the dashboard's entry was created,
// memory tier first, then durable. The second result is false when absent.
func (s *Store) AgeMinutes(ctx context.Context, dashboardID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.mem.Peek(dashboardID)
	if !ok {
		e, err := s.repo.Get(ctx, dashboardID)
		if err != nil || e == nil {
			if err != nil {
				s.logger.ErrorContext(ctx, "Durable read failed",
					log.FieldDashboardID, dashboardID, log.FieldError, err)
			}
			return 0, false
		}
		entry = *e
	}
	return int64(entry.Age(s.now()) / time.Minute), true
}

// Sync re-hydrates the memory tier from the durable tier for one dashboard,
// evicting the memory entry when the durable tier has none. Returns whether
// the durable tier held an entry.
func (s *Store) Sync(ctx context.Context, dashboardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.repo.Get(ctx, dashboardID)
	if err != nil {
		metrics.DurableFailures.Inc()
		s.logger.ErrorContext(ctx, "Tier sync failed",
			log.FieldDashboardID, dashboardID, log.FieldError, err,
			log.FieldOperation, log.OpSync)
		return false
	}
	if entry == nil {
		s.mem.Delete(dashboardID)
		return false
	}
	s.mem.Set(dashboardID, *entry)
	return true
}

// Snapshot returns all durable entries and the namespace lastUpdated stamp,
// for the export codec.
func (s *Store) Snapshot(ctx context.Context) ([]Entry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	last, err := s.repo.LastUpdated(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, last, nil
}

// Replace atomically overwrites the durable namespace with the given entries
// and purges the memory tier, forcing re-hydration on the next Load.
func (s *Store) Replace(ctx context.Context, entries []Entry, lastUpdated int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ReplaceAll(ctx, entries, lastUpdated); err != nil {
		metrics.DurableFailures.Inc()
		return err
	}
	s.mem.Purge()
	return nil
}

// CleanExpired drops expired memory-tier entries; implements cache.Cleaner
// for the background sweeper.
func (s *Store) CleanExpired() int {
	return s.mem.CleanExpired()
}

// Teardown empties both in-memory state and is intended for tests that share
// a process with multiple store lifecycles. The durable tier is untouched.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem.Purge()
}
