package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"benchboard/internal/core"
)

// Records converts loosely-typed roster rows (as decoded from JSON) into
// typed records. Unknown keys are ignored, missing keys yield zero values
// and malformed aging values default to 0; a bad row never aborts the
// batch.
func Records(rows []map[string]any) []core.Record {
	out := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromMap(row))
	}
	return out
}

func recordFromMap(row map[string]any) core.Record {
	lower := make(map[string]any, len(row))
	for k, v := range row {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return core.Record{
		ResourceType: fieldString(lower, headerSynonyms["resourceType"]),
		Grade:        fieldString(lower, headerSynonyms["grade"]),
		Status:       fieldString(lower, headerSynonyms["status"]),
		Relocation:   fieldString(lower, headerSynonyms["relocation"]),
		Aging:        fieldInt(lower, headerSynonyms["aging"]),
	}
}

func fieldString(row map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func fieldInt(row map[string]any, keys []string) int {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
		if parsed, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(v))); err == nil {
			return parsed
		}
		return 0
	}
	return 0
}

// RecordFromColumns builds a record from a positional row using a
// resolved schema. Shared by the CSV and Sheets readers.
func RecordFromColumns(cols []string, s Schema) core.Record {
	return core.Record{
		ResourceType: columnString(cols, s.ResourceType),
		Grade:        columnString(cols, s.Grade),
		Status:       columnString(cols, s.Status),
		Relocation:   columnString(cols, s.Relocation),
		Aging:        columnInt(cols, s.Aging),
	}
}

func columnString(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

func columnInt(cols []string, idx int) int {
	raw := columnString(cols, idx)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func emptyRow(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
