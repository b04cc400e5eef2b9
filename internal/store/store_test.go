package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"benchboard/internal/core"
)

// fakeRepo is an in-memory DurableRepository. failing switches every
// operation to an error to exercise the degraded paths.
type fakeRepo struct {
	entries     map[string]Entry
	lastUpdated int64
	failing     bool
}

var errRepoDown = errors.New("durable tier unavailable")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]Entry)}
}

func (f *fakeRepo) Put(_ context.Context, e Entry) error {
	if f.failing {
		return errRepoDown
	}
	f.entries[e.DashboardID] = e
	f.lastUpdated = e.CreatedAt
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*Entry, error) {
	if f.failing {
		return nil, errRepoDown
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if f.failing {
		return errRepoDown
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeRepo) DeleteAll(_ context.Context) error {
	if f.failing {
		return errRepoDown
	}
	f.entries = make(map[string]Entry)
	f.lastUpdated = 0
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]Entry, error) {
	if f.failing {
		return nil, errRepoDown
	}
	out := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) LastUpdated(_ context.Context) (int64, error) {
	if f.failing {
		return 0, errRepoDown
	}
	return f.lastUpdated, nil
}

func (f *fakeRepo) DeleteOlderThan(_ context.Context, cutoff int64) ([]string, error) {
	if f.failing {
		return nil, errRepoDown
	}
	var removed []string
	for id, e := range f.entries {
		if e.CreatedAt < cutoff {
			removed = append(removed, id)
			delete(f.entries, id)
		}
	}
	return removed, nil
}

func (f *fakeRepo) ReplaceAll(_ context.Context, entries []Entry, lastUpdated int64) error {
	if f.failing {
		return errRepoDown
	}
	f.entries = make(map[string]Entry, len(entries))
	for _, e := range entries {
		f.entries[e.DashboardID] = e
	}
	f.lastUpdated = lastUpdated
	return nil
}

func testAggregate() core.Aggregate {
	agg := make(core.Aggregate)
	agg.Cell("Bench", "D1").AvailableLocationConstraint = 3
	agg.Cell("RD", "B1").ClientBlocked = 2
	return agg
}

func newTestStore(repo DurableRepository) *Store {
	s := New(repo, nil)
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())
	agg := testAggregate()

	if !s.Save(ctx, "alloc", agg) {
		t.Fatal("Save returned false")
	}

	got := s.Load(ctx, "alloc")
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if !got.Equal(agg) {
		t.Errorf("Load = %v, want %v", got, agg)
	}
}

func TestStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())
	s.Save(ctx, "alloc", testAggregate())

	first := s.Load(ctx, "alloc")
	first.Cell("Bench", "D1").ClientBlocked = 99

	second := s.Load(ctx, "alloc")
	if second.Cell("Bench", "D1").ClientBlocked != 0 {
		t.Error("mutating a loaded aggregate leaked into the cache")
	}
}

func TestStore_LoadMissingReturnsNil(t *testing.T) {
	s := newTestStore(newFakeRepo())
	if got := s.Load(context.Background(), "never-seen"); got != nil {
		t.Errorf("Load(missing) = %v, want nil", got)
	}
}

func TestStore_MemoryExpiryFallsThroughToDurable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newTestStore(repo)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Save(ctx, "alloc", testAggregate())

	// Two days later the memory entry has outlived the soft TTL; the durable
	// tier still serves it and re-populates the memory tier regardless of age.
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	if got := s.Load(ctx, "alloc"); got == nil {
		t.Fatal("Load after soft-TTL expiry should fall through to durable tier")
	}

	// Durable gone now: the re-populated memory entry is still stale by
	// CreatedAt, so the next Load misses both tiers.
	delete(repo.entries, "alloc")
	if got := s.Load(ctx, "alloc"); got != nil {
		t.Error("stale memory entry must not be served once durable is empty")
	}
}

func TestStore_SaveDurableFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.failing = true
	s := newTestStore(repo)

	if s.Save(ctx, "alloc", testAggregate()) {
		t.Error("Save should return false when the durable write fails")
	}

	// Memory-only degradation: the entry is still readable this process.
	repo.failing = false
	if got := s.Load(ctx, "alloc"); got == nil {
		t.Error("memory tier should still hold the entry after a durable failure")
	}
	if len(repo.entries) != 0 {
		t.Error("durable tier should be empty after the failed write")
	}
}

func TestStore_HasDataIgnoresExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newTestStore(repo)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Save(ctx, "alloc", testAggregate())

	s.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	if !s.HasData(ctx, "alloc") {
		t.Error("HasData should report true regardless of entry age")
	}
	if s.HasData(ctx, "other") {
		t.Error("HasData should report false for unknown dashboards")
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())
	s.Save(ctx, "alloc", testAggregate())

	if !s.Clear(ctx, "alloc") {
		t.Error("Clear(existing) = false, want true")
	}
	if s.HasData(ctx, "alloc") {
		t.Error("HasData after Clear = true, want false")
	}
	if s.Load(ctx, "alloc") != nil {
		t.Error("Load after Clear should return nil")
	}
	if !s.Clear(ctx, "alloc") {
		t.Error("Clear(absent) = false, want true (idempotent)")
	}
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())
	s.Save(ctx, "a", testAggregate())
	s.Save(ctx, "b", testAggregate())

	if !s.ClearAll(ctx) {
		t.Fatal("ClearAll returned false")
	}

	stats := s.Stats(ctx)
	if stats.TotalDashboards != 0 || stats.CachedDashboards != 0 {
		t.Errorf("Stats after ClearAll = %+v, want empty", stats)
	}
}

func TestStore_CleanupOldData(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newTestStore(repo)

	base := time.Now()
	s.now = func() time.Time { return base.Add(-8 * 24 * time.Hour) }
	s.Save(ctx, "stale", testAggregate())
	s.now = func() time.Time { return base }
	s.Save(ctx, "fresh", testAggregate())

	if !s.CleanupOldData(ctx) {
		t.Error("CleanupOldData = false, want true when a stale entry exists")
	}
	if s.HasData(ctx, "stale") {
		t.Error("stale entry should be gone from both tiers")
	}
	if !s.HasData(ctx, "fresh") {
		t.Error("fresh entry should survive cleanup")
	}

	if s.CleanupOldData(ctx) {
		t.Error("CleanupOldData = true on a second pass, want false")
	}
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())
	s.Save(ctx, "beta", testAggregate())
	s.Save(ctx, "alpha", testAggregate())

	stats := s.Stats(ctx)
	if stats.TotalDashboards != 2 {
		t.Errorf("TotalDashboards = %d, want 2", stats.TotalDashboards)
	}
	if stats.CachedDashboards != 2 {
		t.Errorf("CachedDashboards = %d, want 2", stats.CachedDashboards)
	}
	if stats.LastUpdated == 0 {
		t.Error("LastUpdated should be set after saves")
	}
	if len(stats.DashboardIDs) != 2 || stats.DashboardIDs[0] != "alpha" || stats.DashboardIDs[1] != "beta" {
		t.Errorf("DashboardIDs = %v, want [alpha beta]", stats.DashboardIDs)
	}
}

func TestStore_StatsDegradesToMemoryKeys(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newTestStore(repo)
	s.Save(ctx, "beta", testAggregate())
	s.Save(ctx, "alpha", testAggregate())

	repo.failing = true
	stats := s.Stats(ctx)
	if stats.TotalDashboards != 0 {
		t.Errorf("TotalDashboards with durable tier down = %d, want 0", stats.TotalDashboards)
	}
	if stats.CachedDashboards != 2 {
		t.Errorf("CachedDashboards = %d, want 2", stats.CachedDashboards)
	}
	if len(stats.DashboardIDs) != 2 || stats.DashboardIDs[0] != "alpha" || stats.DashboardIDs[1] != "beta" {
		t.Errorf("DashboardIDs = %v, want memory keys [alpha beta]", stats.DashboardIDs)
	}
}

func TestStore_AgeMinutes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRepo())

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Save(ctx, "alloc", testAggregate())

	s.now = func() time.Time { return base.Add(90 * time.Minute) }
	minutes, ok := s.AgeMinutes(ctx, "alloc")
	if !ok {
		t.Fatal("AgeMinutes(existing) reported absent")
	}
	if minutes != 90 {
		t.Errorf("AgeMinutes = %d, want 90", minutes)
	}

	if _, ok := s.AgeMinutes(ctx, "missing"); ok {
		t.Error("AgeMinutes(missing) should report absent")
	}
}

func TestStore_SyncRehydratesMemory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := newTestStore(repo)
	s.Save(ctx, "alloc", testAggregate())

	// Simulate another process rewriting the durable tier behind our back.
	fresh := make(core.Aggregate)
	fresh.Cell("Bench", "C1").InternalBlocked = 7
	repo.entries["alloc"] = Entry{
		DashboardID: "alloc", CreatedAt: time.Now().UnixMilli(),
		Version: DataVersion, Aggregate: fresh,
	}

	if !s.Sync(ctx, "alloc") {
		t.Fatal("Sync returned false for an existing durable entry")
	}
	if got := s.Load(ctx, "alloc"); !got.Equal(fresh) {
		t.Errorf("Load after Sync = %v, want rehydrated %v", got, fresh)
	}

	delete(repo.entries, "gone")
	if s.Sync(ctx, "gone") {
		t.Error("Sync should return false when durable has no entry")
	}
}
