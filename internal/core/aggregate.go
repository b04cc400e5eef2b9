package core

// BucketCounts holds the five status counters for one (resource type, grade)
// cell. Buckets are evaluated independently: a single record may increment
// several of them, so the per-cell sum can exceed the number of rows.
type BucketCounts struct {
	ClientBlocked               int `json:"ClientBlocked"`
	InternalBlocked             int `json:"InternalBlocked"`
	AvailableLocationConstraint int `json:"AvailableLocationConstraint"`
	AvailableMlReturnConstraint int `json:"AvailableMlReturnConstraint"`
	AvailableHighAging90Plus    int `json:"AvailableHighAging90Plus"`
}

// Aggregate is the classifier output: resource type -> grade -> counters.
// Missing resource-type or grade values appear under the empty string key.
type Aggregate map[string]map[string]*BucketCounts

// Cell returns the counters for (resourceType, grade), creating the nested
// entries with all buckets zeroed when first touched.
func (a Aggregate) Cell(resourceType, grade string) *BucketCounts {
	grades, ok := a[resourceType]
	if !ok {
		grades = make(map[string]*BucketCounts)
		a[resourceType] = grades
	}
	cell, ok := grades[grade]
	if !ok {
		cell = &BucketCounts{}
		grades[grade] = cell
	}
	return cell
}

// Clone returns a deep copy. Returned aggregates are cloned at the store
// boundary so cached data cannot be mutated by consumers.
func (a Aggregate) Clone() Aggregate {
	if a == nil {
		return nil
	}
	out := make(Aggregate, len(a))
	for rt, grades := range a {
		cp := make(map[string]*BucketCounts, len(grades))
		for g, cell := range grades {
			c := *cell
			cp[g] = &c
		}
		out[rt] = cp
	}
	return out
}

// Equal reports whether two aggregates hold identical counts.
func (a Aggregate) Equal(b Aggregate) bool {
	if len(a) != len(b) {
		return false
	}
	for rt, grades := range a {
		other, ok := b[rt]
		if !ok || len(grades) != len(other) {
			return false
		}
		for g, cell := range grades {
			oc, ok := other[g]
			if !ok || *cell != *oc {
				return false
			}
		}
	}
	return true
}
