// Package codec serializes the whole dashboard cache namespace to a portable
// JSON blob and back, for copy-paste round-tripping between installs.
package codec

import (
	"context"
	"encoding/json"
	"time"

	"benchboard/internal/core"
	"benchboard/internal/log"
	"benchboard/internal/store"
)

// Wire layout. The _metadata key keeps exports readable by older installs
// that expect metadata alongside the payload.
type envelope struct {
	DashboardData map[string]wireEntry `json:"dashboardData"`
	LastUpdated   int64                `json:"lastUpdated"`
	ExportedAt    int64                `json:"exportedAt,omitempty"`
	Version       string               `json:"version,omitempty"`
}

type wireEntry struct {
	Aggregate core.Aggregate `json:"aggregate"`
	Metadata  wireMetadata   `json:"_metadata"`
}

type wireMetadata struct {
	Timestamp   int64  `json:"timestamp"`
	DashboardID string `json:"dashboardId"`
	Version     string `json:"version"`
}

// Codec moves the store's durable namespace in and out of the wire format.
type Codec struct {
	store  *store.Store
	logger *log.Logger
	now    func() time.Time
}

func New(st *store.Store, logger *log.Logger) *Codec {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Codec{
		store:  st,
		logger: logger.WithComponent(log.ComponentCodec),
		now:    time.Now,
	}
}

// Export serializes every durable entry plus the namespace stamp into a
// pretty-printed blob. Returns "" and false when the durable tier cannot be
// read; an empty store still exports a valid (empty) envelope.
func (c *Codec) Export(ctx context.Context) (string, bool) {
	entries, lastUpdated, err := c.store.Snapshot(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Export failed reading durable tier", log.FieldError, err)
		return "", false
	}

	env := envelope{
		DashboardData: make(map[string]wireEntry, len(entries)),
		LastUpdated:   lastUpdated,
		ExportedAt:    c.now().UnixMilli(),
		Version:       store.DataVersion,
	}
	for _, e := range entries {
		env.DashboardData[e.DashboardID] = wireEntry{
			Aggregate: e.Aggregate,
			Metadata: wireMetadata{
				Timestamp:   e.CreatedAt,
				DashboardID: e.DashboardID,
				Version:     e.Version,
			},
		}
	}

	blob, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		c.logger.ErrorContext(ctx, "Export marshal failed", log.FieldError, err)
		return "", false
	}
	c.logger.InfoContext(ctx, "Cache exported",
		log.FieldEntryCount, len(entries), log.FieldOperation, log.OpExport)
	return string(blob), true
}

// Import parses a blob and atomically replaces the durable namespace,
// purging the memory tier so the next load re-hydrates. Any parse or shape
// failure returns false and leaves existing state untouched.
func (c *Codec) Import(ctx context.Context, text string) bool {
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		c.logger.WarnContext(ctx, "Import rejected: not valid JSON", log.FieldError, err)
		return false
	}
	if env.DashboardData == nil {
		c.logger.WarnContext(ctx, "Import rejected: missing dashboardData map")
		return false
	}

	entries := make([]store.Entry, 0, len(env.DashboardData))
	for id, we := range env.DashboardData {
		if we.Aggregate == nil {
			c.logger.WarnContext(ctx, "Import rejected: entry without aggregate",
				log.FieldDashboardID, id)
			return false
		}
		version := we.Metadata.Version
		if version == "" {
			version = store.DataVersion
		}
		entries = append(entries, store.Entry{
			DashboardID: id, // the map key wins over embedded metadata
			CreatedAt:   we.Metadata.Timestamp,
			Version:     version,
			Aggregate:   we.Aggregate,
		})
	}

	if err := c.store.Replace(ctx, entries, env.LastUpdated); err != nil {
		c.logger.ErrorContext(ctx, "Import failed writing durable tier", log.FieldError, err)
		return false
	}
	c.logger.InfoContext(ctx, "Cache imported",
		log.FieldEntryCount, len(entries), log.FieldOperation, log.OpImport)
	return true
}
