// Package classify turns record sets into the nested count matrix the
// dashboards render. Classification is best-effort: malformed records land in
// an unclassified cell instead of failing the whole aggregate.
package classify

import (
	"benchboard/internal/core"
)

// batchSize bounds the working set for a single classification pass. Batch
// boundaries carry no meaning; classification is order-independent.
const batchSize = 1000

// highAgingThresholdDays is exclusive: a record counts only above it.
const highAgingThresholdDays = 90

// Records classifies a record set into an aggregate. It never fails: missing
// resource types and grades become empty-string keys, and every touched cell
// has all five buckets initialized even when nothing increments them.
func Records(records []core.Record) core.Aggregate {
	agg := make(core.Aggregate)
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		classifyBatch(agg, records[start:end])
	}
	return agg
}

func classifyBatch(agg core.Aggregate, batch []core.Record) {
	for _, r := range batch {
		cell := agg.Cell(core.NormalizeResourceType(r.ResourceType), r.Grade)

		// "avail" catches both "Available" and shorthand statuses like
		// "Avail_BenchRD" that the source exports use.
		available := r.StatusContains("avail")
		mlReturn := core.IsMlReturn(r.ResourceType) && available

		// Buckets are independent predicates, not a partition: an ML-return
		// record with high aging increments two availability buckets.
		if r.StatusContains("client blocked") {
			cell.ClientBlocked++
		}
		if r.StatusContains("internal blocked") {
			cell.InternalBlocked++
		}
		if mlReturn {
			cell.AvailableMlReturnConstraint++
		}
		if available && !r.HasRelocation() && !mlReturn {
			cell.AvailableLocationConstraint++
		}
		if available && r.Aging > highAgingThresholdDays {
			cell.AvailableHighAging90Plus++
		}
	}
}
