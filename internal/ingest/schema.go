package ingest

import "strings"

// Schema maps roster column headers to record fields. Exports from
// different HR tools name the same columns differently, so each field
// accepts a set of synonyms, matched case-insensitively.
type Schema struct {
	ResourceType int
	Grade        int
	Status       int
	Relocation   int
	Aging        int
}

const missingColumn = -1

var headerSynonyms = map[string][]string{
	"resourceType": {"resource type", "type", "resource_type"},
	"grade":        {"grade", "band"},
	"status":       {"deployment status", "status", "deployment_status"},
	"relocation":   {"relocation", "relocation location"},
	"aging":        {"aging", "aging days", "aging_days"},
}

// ResolveSchema matches a header row against the known synonyms. Missing
// columns resolve to -1; callers get zero values for those fields.
func ResolveSchema(header []string) Schema {
	s := Schema{
		ResourceType: missingColumn,
		Grade:        missingColumn,
		Status:       missingColumn,
		Relocation:   missingColumn,
		Aging:        missingColumn,
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch {
		case s.ResourceType == missingColumn && matchesAny(key, headerSynonyms["resourceType"]):
			s.ResourceType = i
		case s.Grade == missingColumn && matchesAny(key, headerSynonyms["grade"]):
			s.Grade = i
		case s.Status == missingColumn && matchesAny(key, headerSynonyms["status"]):
			s.Status = i
		case s.Relocation == missingColumn && matchesAny(key, headerSynonyms["relocation"]):
			s.Relocation = i
		case s.Aging == missingColumn && matchesAny(key, headerSynonyms["aging"]):
			s.Aging = i
		}
	}
	return s
}

// Complete reports whether the columns needed for classification were
// found. Relocation and aging are optional; their absence just disables
// the buckets that depend on them.
func (s Schema) Complete() bool {
	return s.ResourceType != missingColumn && s.Grade != missingColumn && s.Status != missingColumn
}

func matchesAny(key string, synonyms []string) bool {
	for _, syn := range synonyms {
		if key == syn {
			return true
		}
	}
	return false
}
