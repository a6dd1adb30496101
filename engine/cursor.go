package engine

import (
	"fmt"

	"github.com/hupe1980/bridgescan/bitmap"
	"github.com/hupe1980/bridgescan/internal/arena"
)

// BitmapProducer yields the row-identifier set a cursor iterates over,
// typically by evaluating an AND/OR tree of index scans. The boolean
// result reports whether the set is lossy and candidate rows must be
// rechecked against the original qualifier.
type BitmapProducer interface {
	RowBitmap() (*bitmap.RowSet, bool, error)
}

// RecheckFunc re-evaluates the original qualifier for one candidate
// tuple. It is consulted only for lossy bitmaps.
type RecheckFunc func(Tuple) (bool, error)

// BitmapCursor iterates a relation in row-identifier order, driven by a
// bitmap produced from one or more index scans. Candidate rows are
// filtered by snapshot visibility and, for lossy bitmaps, rechecked
// against the original qualifier.
//
// A cursor is single use: once exhausted it keeps reporting end of
// scan. Restart requires a new cursor.
type BitmapCursor struct {
	rel     *Relation
	snap    Snapshot
	keyType ValueType

	rows    []uint32
	pos     int
	lossy   bool
	recheck RecheckFunc

	removedByRecheck uint64
	closed           bool
}

// NewBitmapCursor materializes the producer's bitmap into an
// arena-backed buffer and returns a cursor over it. The snapshot is
// captured by value; keyType must match the relation's primary-key
// column type.
func NewBitmapCursor(snap Snapshot, a *arena.Arena, rel *Relation, keyType ValueType, producer BitmapProducer, recheck RecheckFunc) (*BitmapCursor, error) {
	if rel == nil || rel.closed {
		return nil, ErrClosed
	}

	primary := rel.Descr().Primary()
	if primary != nil && len(primary.Columns) == 1 {
		if pkType, ok := rel.Descr().ColumnType(primary.Columns[0]); ok && pkType != keyType {
			return nil, fmt.Errorf("engine: cursor key type %s does not match primary key type %s", keyType, pkType)
		}
	}

	rs, lossy, err := producer.RowBitmap()
	if err != nil {
		return nil, err
	}

	buf, err := a.AllocUint32Slice(int(rs.Cardinality()))
	if err != nil {
		return nil, err
	}
	for row := range rs.Iterator() {
		buf = append(buf, row)
	}

	rel.t.cursorOpens.Add(1)

	return &BitmapCursor{
		rel:     rel,
		snap:    snap,
		keyType: keyType,
		rows:    buf,
		lossy:   lossy,
		recheck: recheck,
	}, nil
}

// Fetch returns the next visible tuple. End of scan is signaled by
// ok=false with a nil error; it is not an error condition.
func (c *BitmapCursor) Fetch() (Tuple, bool, error) {
	if c.closed {
		return Tuple{}, false, nil
	}

	for c.pos < len(c.rows) {
		row := RowID(c.rows[c.pos])
		c.pos++

		tuple, visible, err := c.rel.FetchRow(row, c.snap)
		if err != nil {
			return Tuple{}, false, err
		}
		if !visible {
			continue
		}

		if c.lossy && c.recheck != nil {
			keep, err := c.recheck(tuple)
			if err != nil {
				return Tuple{}, false, err
			}
			if !keep {
				c.removedByRecheck++
				continue
			}
		}
		return tuple, true, nil
	}
	return Tuple{}, false, nil
}

// RowsRemovedByRecheck returns how many candidate rows the recheck
// rejected so far.
func (c *BitmapCursor) RowsRemovedByRecheck() uint64 {
	return c.removedByRecheck
}

// Lossy reports whether the cursor rechecks candidate rows.
func (c *BitmapCursor) Lossy() bool {
	return c.lossy
}

// Close releases the cursor. The row buffer belongs to the scan's
// arena, so the cursor only drops its references. Idempotent.
func (c *BitmapCursor) Close() {
	c.closed = true
	c.rows = nil
}
