// Package engine is the storage-engine boundary of the scan bridge.
//
// It exposes the surface the bridge consumes: table descriptors with an
// ordered index list, value-copied snapshots, bitmap production from
// index postings, and the bitmap cursor driving tuple fetches. The
// package also ships an in-memory MVCC implementation of that surface
// so the bridge is executable and testable without an external server.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/bridgescan/bitmap"
)

// posting is one entry of an index posting list: the key value and the
// set of row identifiers carrying it in the indexed column.
type posting struct {
	value Datum
	rows  *bitmap.RowSet
}

// version is one MVCC row version. Deleted versions stay in place and
// in the index postings; visibility is decided per snapshot at fetch.
type version struct {
	values     []Datum
	insertedAt uint64
	deletedAt  uint64
}

type table struct {
	mu    sync.RWMutex
	descr *TableDescr
	rows  []version
	// index id -> key column -> datum key -> posting
	postings map[IndexID]map[string]map[string]*posting

	cursorOpens atomic.Uint64
}

// Engine is an in-memory multi-version storage engine. Writers are
// serialized per table; readers work against value-copied snapshots and
// never block writers.
type Engine struct {
	mu     sync.RWMutex
	seq    atomic.Uint64
	tables map[string]*table
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger used by the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an empty Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		tables: make(map[string]*table),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateTable registers a table with the given descriptor.
func (e *Engine) CreateTable(descr *TableDescr) error {
	if err := descr.validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.tables[descr.Name]; exists {
		return fmt.Errorf("engine: table %q already exists", descr.Name)
	}

	t := &table{
		descr:    descr,
		postings: make(map[IndexID]map[string]map[string]*posting, len(descr.Indexes)),
	}
	for _, ix := range descr.Indexes {
		cols := make(map[string]map[string]*posting, len(ix.Columns))
		for _, col := range ix.Columns {
			cols[col] = make(map[string]*posting)
		}
		t.postings[ix.ID] = cols
	}
	e.tables[descr.Name] = t

	e.logger.Debug("table created", "table", descr.Name, "indexes", len(descr.Indexes))
	return nil
}

// HasTable reports whether the engine backs a table with that name.
// The planner uses this to decide whether a relation's paths must be
// rewritten at all.
func (e *Engine) HasTable(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.tables[name]
	return ok
}

// OpenRelation opens a handle on a table. No locking beyond what the
// caller already holds is taken; the handle is only a descriptor and
// row-store reference.
func (e *Engine) OpenRelation(name string) (*Relation, error) {
	e.mu.RLock()
	t, ok := e.tables[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, name)
	}
	return &Relation{t: t}, nil
}

// Snapshot captures the current read view by value.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{Seq: e.seq.Load()}
}

// Insert appends a new row version and updates all index postings.
// Values must be laid out per the table's column order.
func (e *Engine) Insert(tableName string, values []Datum) (RowID, error) {
	e.mu.RLock()
	t, ok := e.tables[tableName]
	e.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: table %q", ErrNotFound, tableName)
	}

	d := t.descr
	if len(values) != len(d.Columns) {
		return 0, fmt.Errorf("engine: table %q expects %d values, got %d", tableName, len(d.Columns), len(values))
	}
	for i, v := range values {
		if err := checkDatum(d.Columns[i].Type, v); err != nil {
			return 0, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	row := RowID(len(t.rows))
	seq := e.seq.Add(1)
	t.rows = append(t.rows, version{values: values, insertedAt: seq})

	for _, ix := range d.Indexes {
		cols := t.postings[ix.ID]
		for _, col := range ix.Columns {
			pos, _ := d.ColumnIndex(col)
			key := datumKey(d.Columns[pos].Type, values[pos])
			p, ok := cols[col][key]
			if !ok {
				p = &posting{value: values[pos], rows: bitmap.NewRowSet()}
				cols[col][key] = p
			}
			p.rows.Add(uint32(row))
		}
	}

	return row, nil
}

// Delete marks a row version deleted as of a new sequence number.
// Postings keep the row; snapshots taken before the delete still see it.
func (e *Engine) Delete(tableName string, row RowID) error {
	e.mu.RLock()
	t, ok := e.tables[tableName]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: table %q", ErrNotFound, tableName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if int(row) >= len(t.rows) {
		return fmt.Errorf("%w: row %d in table %q", ErrNotFound, row, tableName)
	}
	v := &t.rows[row]
	if v.deletedAt != 0 {
		return fmt.Errorf("%w: row %d in table %q already deleted", ErrNotFound, row, tableName)
	}
	v.deletedAt = e.seq.Add(1)
	return nil
}
