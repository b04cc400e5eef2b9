package manager

import (
	"context"
	"sync"

	"benchboard/internal/core"
	"benchboard/internal/log"
	"benchboard/internal/store"
)

// Manager tracks which dashboard is current and holds the aggregates the
// UI reads from. It sits between the transport layer and the store: the
// store owns persistence, the manager owns selection and loading state.
type Manager struct {
	mu     sync.Mutex
	store  *store.Store
	logger *log.Logger

	current string
	loading map[string]bool
	active  map[string]core.Aggregate

	// lastSet is the most recently saved aggregate, kept as a fallback
	// for callers that ask for data before any dashboard is current.
	// Cleared when a load for the current dashboard misses, so switching
	// to a never-seen dashboard does not surface another dashboard's data.
	lastSet core.Aggregate
}

func New(s *store.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{
		store:   s,
		logger:  logger.WithComponent(log.ComponentManager),
		loading: make(map[string]bool),
		active:  make(map[string]core.Aggregate),
	}
}

// SwitchDashboard makes dashboardID current and attempts to load its
// aggregate. A miss leaves the dashboard current with empty state; the
// caller decides whether to populate it.
func (m *Manager) SwitchDashboard(ctx context.Context, dashboardID string) {
	m.mu.Lock()
	m.current = dashboardID
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "switched dashboard", log.FieldDashboardID, dashboardID)
	m.LoadDashboardData(ctx, dashboardID)
}

// LoadDashboardData loads the aggregate for dashboardID from the store
// into the active set. Returns the aggregate, or nil when no data exists.
func (m *Manager) LoadDashboardData(ctx context.Context, dashboardID string) core.Aggregate {
	m.mu.Lock()
	m.loading[dashboardID] = true
	m.mu.Unlock()

	agg := m.store.Load(ctx, dashboardID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading[dashboardID] = false
	if agg == nil {
		delete(m.active, dashboardID)
		// A miss for the selected dashboard leaves it genuinely empty:
		// the last-set fallback only covers reads before any switch.
		if dashboardID == m.current {
			m.lastSet = nil
		}
		return nil
	}
	m.active[dashboardID] = agg
	return agg
}

// SaveDashboardData persists the aggregate and, on success, records it as
// the last-set data and as the active aggregate when dashboardID is current.
func (m *Manager) SaveDashboardData(ctx context.Context, dashboardID string, agg core.Aggregate) bool {
	ok := m.store.Save(ctx, dashboardID, agg)
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSet = agg.Clone()
	if dashboardID == m.current {
		m.active[dashboardID] = agg.Clone()
	}
	return true
}

// CurrentData returns the active aggregate for the current dashboard,
// falling back to the last-set aggregate when nothing is active. Returns
// nil when neither exists.
func (m *Manager) CurrentData() core.Aggregate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agg, ok := m.active[m.current]; ok {
		return agg.Clone()
	}
	return m.lastSet.Clone()
}

// CurrentDashboard returns the id of the current dashboard, empty when
// none has been selected.
func (m *Manager) CurrentDashboard() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsLoading reports whether a load is in flight for dashboardID.
func (m *Manager) IsLoading(dashboardID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading[dashboardID]
}

// Forget drops any in-memory state for dashboardID. Used after the
// dashboard's data is cleared so stale aggregates do not linger.
func (m *Manager) Forget(dashboardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, dashboardID)
	delete(m.loading, dashboardID)
}

// Invalidate drops cached aggregates so subsequent reads hit the store
// again. The current selection survives; used after an import replaces
// the stored data wholesale.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSet = nil
	m.active = make(map[string]core.Aggregate)
}

// Reset drops all in-memory state, including the last-set fallback.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
	m.lastSet = nil
	m.loading = make(map[string]bool)
	m.active = make(map[string]core.Aggregate)
}
