package engine

// Snapshot is a consistent read view over the engine. It is a plain
// value: callers capture it by copy, and a captured snapshot is
// unaffected by later writes.
//
// A row version is visible when it was inserted at or before Seq and
// not deleted at or before Seq.
type Snapshot struct {
	Seq uint64
}

// Visible reports whether a row version with the given insert/delete
// sequence numbers is visible under the snapshot. A deletedAt of zero
// means the version is live.
func (s Snapshot) Visible(insertedAt, deletedAt uint64) bool {
	if insertedAt == 0 || insertedAt > s.Seq {
		return false
	}
	return deletedAt == 0 || deletedAt > s.Seq
}
