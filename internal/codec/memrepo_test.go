package codec

import (
	"context"

	"benchboard/internal/store"
)

// memRepo is a minimal in-memory store.DurableRepository for codec tests.
type memRepo struct {
	entries     map[string]store.Entry
	lastUpdated int64
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[string]store.Entry)}
}

func (m *memRepo) Put(_ context.Context, e store.Entry) error {
	m.entries[e.DashboardID] = e
	m.lastUpdated = e.CreatedAt
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*store.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func (m *memRepo) DeleteAll(_ context.Context) error {
	m.entries = make(map[string]store.Entry)
	m.lastUpdated = 0
	return nil
}

func (m *memRepo) List(_ context.Context) ([]store.Entry, error) {
	out := make([]store.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memRepo) LastUpdated(_ context.Context) (int64, error) {
	return m.lastUpdated, nil
}

func (m *memRepo) DeleteOlderThan(_ context.Context, cutoff int64) ([]string, error) {
	var removed []string
	for id, e := range m.entries {
		if e.CreatedAt < cutoff {
			removed = append(removed, id)
			delete(m.entries, id)
		}
	}
	return removed, nil
}

func (m *memRepo) ReplaceAll(_ context.Context, entries []store.Entry, lastUpdated int64) error {
	m.entries = make(map[string]store.Entry, len(entries))
	for _, e := range entries {
		m.entries[e.DashboardID] = e
	}
	m.lastUpdated = lastUpdated
	return nil
}
