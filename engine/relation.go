package engine

import (
	"fmt"

	"github.com/hupe1980/bridgescan/bitmap"
)

// Relation is an open handle on an engine table. Handles are cheap and
// hold no lock; Close only invalidates the handle.
type Relation struct {
	t      *table
	closed bool
}

// Descr returns the table descriptor.
func (r *Relation) Descr() *TableDescr {
	return r.t.descr
}

// Close invalidates the handle. Idempotent.
func (r *Relation) Close() {
	r.closed = true
}

// CursorOpens returns the number of bitmap cursors ever opened over
// this relation.
func (r *Relation) CursorOpens() uint64 {
	return r.t.cursorOpens.Load()
}

// FetchRow returns the tuple for a row identifier if the row version is
// visible under the snapshot. The returned value slice is a copy.
func (r *Relation) FetchRow(row RowID, snap Snapshot) (Tuple, bool, error) {
	if r.closed {
		return Tuple{}, false, ErrClosed
	}

	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	if int(row) >= len(r.t.rows) {
		return Tuple{}, false, nil
	}
	v := r.t.rows[row]
	if !snap.Visible(v.insertedAt, v.deletedAt) {
		return Tuple{}, false, nil
	}

	values := make([]Datum, len(v.values))
	copy(values, v.values)
	return Tuple{Row: row, Values: values}, true, nil
}

// IndexBitmap produces the row-identifier set for one index scan: the
// conjunction of conds evaluated against the index postings. The second
// result reports whether the set is lossy, i.e. may contain rows that
// do not satisfy the original qualifier and must be rechecked at fetch.
//
// Postings are multi-versioned: the set can reference row versions that
// are invisible under a given snapshot. Visibility is the cursor's job.
func (r *Relation) IndexBitmap(id IndexID, conds []Cond) (*bitmap.RowSet, bool, error) {
	if r.closed {
		return nil, false, ErrClosed
	}

	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	d := r.t.descr
	pos, ok := d.IndexPosition(id)
	if !ok {
		return nil, false, fmt.Errorf("engine: table %q has no index %d", d.Name, id)
	}
	ix := &d.Indexes[pos]
	cols := r.t.postings[id]

	if len(conds) == 0 {
		return r.allIndexedRowsLocked(ix, cols), false, nil
	}

	var result *bitmap.RowSet
	lossy := false
	for _, c := range conds {
		byKey, ok := cols[c.Column]
		if !ok {
			return nil, false, fmt.Errorf("engine: index %q does not cover column %q", ix.Name, c.Column)
		}
		colType, _ := d.ColumnType(c.Column)

		set, condLossy, err := evalPostingCond(byKey, colType, c)
		if err != nil {
			return nil, false, err
		}
		lossy = lossy || condLossy

		if result == nil {
			result = set
		} else {
			result.And(set)
		}
	}
	return result, lossy, nil
}

// allIndexedRowsLocked unions every posting of the leading key column.
func (r *Relation) allIndexedRowsLocked(ix *IndexDescr, cols map[string]map[string]*posting) *bitmap.RowSet {
	result := bitmap.NewRowSet()
	if len(ix.Columns) == 0 {
		return result
	}
	for _, p := range cols[ix.Columns[0]] {
		result.Or(p.rows)
	}
	return result
}

// evalPostingCond resolves one condition against a column's postings.
// Equality is a single key probe. Range operators walk the postings and
// union matching entries. Inequality cannot be served precisely by the
// postings, so it over-approximates to every row carrying the column
// and flags the result lossy.
func evalPostingCond(byKey map[string]*posting, colType ValueType, c Cond) (*bitmap.RowSet, bool, error) {
	set := bitmap.NewRowSet()

	switch c.Op {
	case OpEq:
		if p, ok := byKey[datumKey(colType, c.Value)]; ok {
			set.Or(p.rows)
		}
		return set, false, nil

	case OpLt, OpLe, OpGt, OpGe:
		for _, p := range byKey {
			cmp, err := compareDatum(colType, p.value, c.Value)
			if err != nil {
				return nil, false, err
			}
			if c.Op.matches(cmp) {
				set.Or(p.rows)
			}
		}
		return set, false, nil

	case OpNe:
		for _, p := range byKey {
			set.Or(p.rows)
		}
		return set, true, nil

	default:
		return nil, false, fmt.Errorf("engine: operator %s not supported by index scan", c.Op)
	}
}
