package core

import "strings"

// Resource types are free-form in the source data, but one synonym is folded
// into the primary bench pool so that "ML Return" rows aggregate with it.
const (
	ResourceTypeBench = "Bench"
	ResourceTypeRD    = "RD"

	mlReturnMarker = "ml return"
)

// Record is one workforce-allocation entry after the ingestion boundary has
// resolved column headers. Missing fields are zero values; a Record is always
// classifiable, never invalid.
type Record struct {
	ResourceType string
	Grade        string
	Status       string
	Relocation   string
	Aging        int
}

// IsMlReturn reports whether the raw resource type names the ML-return pool.
func IsMlReturn(resourceType string) bool {
	return strings.Contains(strings.ToLower(resourceType), mlReturnMarker)
}

// NormalizeResourceType folds the ML-return synonym into the bench pool and
// returns any other value verbatim, including the empty string.
func NormalizeResourceType(raw string) string {
	if IsMlReturn(raw) {
		return ResourceTypeBench
	}
	return raw
}

// HasRelocation reports whether the relocation field carries a value.
// Empty and "-" both mean absent in the source exports.
func (r Record) HasRelocation() bool {
	v := strings.TrimSpace(r.Relocation)
	return v != "" && v != "-"
}

// StatusContains does the case-insensitive substring matching the status
// buckets are defined in terms of.
func (r Record) StatusContains(needle string) bool {
	return strings.Contains(strings.ToLower(r.Status), needle)
}
