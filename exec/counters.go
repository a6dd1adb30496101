package exec

import "github.com/hupe1980/bridgescan/engine"

// CounterSet accumulates per-index call counters during execution.
// Counters are mutated only while a scan is executing and read only by
// plan visualization.
type CounterSet struct {
	// Scans is the number of bitmap index scans started on the index.
	Scans uint64
	// Tuples is the number of row identifiers the index contributed.
	Tuples uint64
}

// FetchContext carries the per-fetch collaborators down the bitmap
// production path: the relation being scanned and, when call-level
// instrumentation was requested, one CounterSet per table index,
// indexed by index position in the table descriptor. A nil Counters
// slice means instrumentation is off.
//
// The context is passed explicitly from the scan state into the bitmap
// producer; nothing is stashed in process-wide state.
type FetchContext struct {
	Rel      *engine.Relation
	Counters []CounterSet
}
