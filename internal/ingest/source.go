package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"benchboard/internal/core"
)

// Source is the port for anything that can supply roster records:
// a local export file, a Google spreadsheet, or a test fixture.
type Source interface {
	ReadRoster(ctx context.Context) ([]core.Record, error)
}

// FileSource reads a roster from a local .json or .csv export.
type FileSource struct {
	Path string
}

var _ Source = FileSource{}

func (f FileSource) ReadRoster(_ context.Context) ([]core.Record, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		return FromJSON(data)
	case ".csv":
		return FromCSV(strings.NewReader(string(data)))
	default:
		return nil, fmt.Errorf("unsupported roster format: %s", filepath.Ext(f.Path))
	}
}
