package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"benchboard/internal/core"
)

// FromJSON decodes a roster exported as a JSON array of row objects.
func FromJSON(data []byte) ([]core.Record, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode roster json: %w", err)
	}
	return Records(rows), nil
}

// FromCSV reads a roster CSV whose first row is the header. Ragged rows
// are tolerated; fully empty rows are skipped.
func FromCSV(r io.Reader) ([]core.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}

	schema := ResolveSchema(header)
	if !schema.Complete() {
		return nil, fmt.Errorf("roster header missing required columns: %v", header)
	}

	var out []core.Record
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row: %w", err)
		}
		if emptyRow(cols) {
			continue
		}
		out = append(out, RecordFromColumns(cols, schema))
	}
	return out, nil
}
