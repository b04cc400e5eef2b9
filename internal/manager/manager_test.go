package manager

import (
	"context"
	"errors"
	"testing"

	"benchboard/internal/core"
	"benchboard/internal/store"
)

var errRepoDown = errors.New("repository unavailable")

type fakeRepo struct {
	entries     map[string]store.Entry
	lastUpdated int64
	failing     bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]store.Entry)}
}

func (f *fakeRepo) Put(_ context.Context, e store.Entry) error {
	if f.failing {
		return errRepoDown
	}
	f.entries[e.DashboardID] = e
	f.lastUpdated = e.CreatedAt
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*store.Entry, error) {
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
	f.entries = make(map[string]store.Entry)
	f.lastUpdated = 0
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]store.Entry, error) {
	if f.failing {
		return nil, errRepoDown
	}
	out := make([]store.Entry, 0, len(f.entries))
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

func (f *fakeRepo) ReplaceAll(_ context.Context, entries []store.Entry, lastUpdated int64) error {
	if f.failing {
		return errRepoDown
	}
	f.entries = make(map[string]store.Entry, len(entries))
	for _, e := range entries {
		f.entries[e.DashboardID] = e
	}
	f.lastUpdated = lastUpdated
	return nil
}

func sampleAggregate(clientBlocked int) core.Aggregate {
	agg := core.Aggregate{}
	agg.Cell("Bench", "C1").ClientBlocked = clientBlocked
	return agg
}

func TestSwitchDashboardLoadsExistingData(t *testing.T) {
	ctx := context.Background()
	s := store.New(newFakeRepo(), nil)
	m := New(s, nil)

	if !m.SaveDashboardData(ctx, "alpha", sampleAggregate(3)) {
		t.Fatal("save failed")
	}

	m.SwitchDashboard(ctx, "alpha")

	if got := m.CurrentDashboard(); got != "alpha" {
		t.Fatalf("current dashboard = %q, want alpha", got)
	}
	data := m.CurrentData()
	if data == nil {
		t.Fatal("expected current data after switch")
	}
	if got := data.Cell("Bench", "C1").ClientBlocked; got != 3 {
		t.Fatalf("ClientBlocked = %d, want 3", got)
	}
}

func TestSwitchDashboardMissLeavesEmptyState(t *testing.T) {
	ctx := context.Background()
	m := New(store.New(newFakeRepo(), nil), nil)

	m.SwitchDashboard(ctx, "ghost")

	if got := m.CurrentDashboard(); got != "ghost" {
		t.Fatalf("current dashboard = %q, want ghost", got)
	}
	if data := m.CurrentData(); data != nil {
		t.Fatalf("expected nil data for missing dashboard, got %v", data)
	}
	if m.IsLoading("ghost") {
		t.Fatal("loading flag should be cleared after a miss")
	}
}

func TestSwitchToUnseenDashboardDropsFallback(t *testing.T) {
	ctx := context.Background()
	m := New(store.New(newFakeRepo(), nil), nil)

	if !m.SaveDashboardData(ctx, "alpha", sampleAggregate(7)) {
		t.Fatal("save failed")
	}

	m.SwitchDashboard(ctx, "ghost")

	if data := m.CurrentData(); data != nil {
		t.Fatalf("expected empty state after switching to unseen dashboard, got %v", data)
	}

	// The previously saved dashboard is still loadable by selecting it.
	m.SwitchDashboard(ctx, "alpha")
	data := m.CurrentData()
	if data == nil {
		t.Fatal("expected data after switching back to saved dashboard")
	}
	if got := data.Cell("Bench", "C1").ClientBlocked; got != 7 {
		t.Fatalf("ClientBlocked = %d, want 7", got)
	}
}

func TestCurrentDataFallsBackToLastSet(t *testing.T) {
	ctx := context.Background()
	m := New(store.New(newFakeRepo(), nil), nil)

	// Save for a dashboard that is not current; nothing is active.
	if !m.SaveDashboardData(ctx, "beta", sampleAggregate(5)) {
		t.Fatal("save failed")
	}

	data := m.CurrentData()
	if data == nil {
		t.Fatal("expected last-set fallback")
	}
	if got := data.Cell("Bench", "C1").ClientBlocked; got != 5 {
		t.Fatalf("ClientBlocked = %d, want 5", got)
	}
}

func TestSaveFailureLeavesLastSetUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	m := New(store.New(repo, nil), nil)

	if !m.SaveDashboardData(ctx, "alpha", sampleAggregate(1)) {
		t.Fatal("seed save failed")
	}

	repo.failing = true
	if m.SaveDashboardData(ctx, "alpha", sampleAggregate(9)) {
		t.Fatal("save should report failure when the durable tier is down")
	}

	data := m.CurrentData()
	if got := data.Cell("Bench", "C1").ClientBlocked; got != 1 {
		t.Fatalf("last-set data changed after failed save: ClientBlocked = %d, want 1", got)
	}
}

func TestCurrentDataReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := New(store.New(newFakeRepo(), nil), nil)

	m.SaveDashboardData(ctx, "alpha", sampleAggregate(2))
	m.SwitchDashboard(ctx, "alpha")

	first := m.CurrentData()
	first.Cell("Bench", "C1").ClientBlocked = 99

	second := m.CurrentData()
	if got := second.Cell("Bench", "C1").ClientBlocked; got != 2 {
		t.Fatalf("manager state mutated through returned aggregate: got %d, want 2", got)
	}
}

func TestForgetDropsActiveAggregate(t *testing.T) {
	ctx := context.Background()
	m := New(store.New(newFakeRepo(), nil), nil)

	m.SaveDashboardData(ctx, "alpha", sampleAggregate(4))
	m.SwitchDashboard(ctx, "alpha")
	m.Forget("alpha")
	m.Reset()

	if data := m.CurrentData(); data != nil {
		t.Fatalf("expected nil data after reset, got %v", data)
	}
	if got := m.CurrentDashboard(); got != "" {
		t.Fatalf("current dashboard = %q, want empty", got)
	}
}
