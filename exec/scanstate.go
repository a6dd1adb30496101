// Package exec runs custom bitmap-heap scans: it holds the per-scan
// execution state, drives the storage engine's bitmap cursor, and
// accumulates the per-index counters plan visualization reports.
package exec

import (
	"log/slog"

	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/internal/arena"
	"github.com/hupe1980/bridgescan/plan"
)

type phase int

const (
	phaseUninit phase = iota
	phaseOpened
	phaseExecuting
	phaseRescanned
	phaseClosed
)

// EState carries the executor-supplied inputs to Open: the snapshot the
// scan reads under and whether call-level instrumentation was
// requested.
type EState struct {
	Snapshot   engine.Snapshot
	Instrument bool
}

// ScanState is the execution state of one custom bitmap-heap scan. It
// is created from an immutable plan node, so one cached plan can back
// many concurrent scan states; each state deep-copies everything it
// mutates.
//
// A state is single-goroutine: Open, Next, Rescan and Close must be
// called from one goroutine.
type ScanState struct {
	strategy    plan.Strategy
	rel         *engine.Relation
	qual        []engine.Cond
	recheckCond string
	keyType     engine.ValueType
	bitmap      plan.Node

	bmState PlanState
	projPos []int

	logger *slog.Logger
	opts   Options

	phase    phase
	snap     engine.Snapshot
	mem      *arena.Arena
	counters []CounterSet
	cursor   *engine.BitmapCursor

	removedByRecheck uint64
	removedByFilter  uint64
}

// NewScanState instantiates execution state for a custom scan plan over
// an open relation. The plan's mutable parts are deep-copied; the plan
// node itself is never written to.
func NewScanState(cs *plan.CustomScan, rel *engine.Relation, opts ...Option) (*ScanState, error) {
	if cs == nil {
		return nil, plan.Internalf("scan state requires a custom scan plan")
	}
	if rel == nil {
		return nil, engine.ErrClosed
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch cs.Strategy.(type) {
	case plan.BitmapHeap:
	default:
		return nil, plan.Internalf("unrecognized custom scan strategy %T", cs.Strategy)
	}
	if cs.Bitmap == nil {
		return nil, plan.Internalf("bitmap-heap custom scan has no bitmap subtree")
	}

	descr := rel.Descr()
	projPos := make([]int, len(cs.TargetList))
	for i, te := range cs.TargetList {
		pos, ok := descr.ColumnIndex(te.Column)
		if !ok {
			return nil, plan.Internalf("projected column %q missing from table %q", te.Column, descr.Name)
		}
		projPos[i] = pos
	}

	bitmapCopy := cs.Bitmap.Clone()
	bmState, err := initBitmapState(bitmapCopy)
	if err != nil {
		return nil, err
	}

	return &ScanState{
		strategy:    cs.Strategy,
		rel:         rel,
		qual:        plan.CloneConds(cs.Qual),
		recheckCond: cs.RecheckCond,
		keyType:     cs.KeyType,
		bitmap:      bitmapCopy,
		bmState:     bmState,
		projPos:     projPos,
		logger:      logger,
		opts:        o,
	}, nil
}

// Open prepares the state for execution: it captures the snapshot by
// value, creates the scan-scoped arena and, when instrumentation is on,
// allocates one counter set per table index.
func (s *ScanState) Open(es EState) error {
	if s.phase != phaseUninit {
		return plan.Internalf("scan opened twice")
	}

	s.snap = es.Snapshot
	s.mem = arena.New(s.opts.ArenaChunkSize)
	if es.Instrument {
		s.counters = make([]CounterSet, len(s.rel.Descr().Indexes))
	}
	s.phase = phaseOpened

	s.logger.Debug("scan opened",
		slog.String("table", s.rel.Descr().Name),
		slog.Uint64("snapshot", s.snap.Seq),
		slog.Bool("instrument", es.Instrument))
	return nil
}

// Next returns the next projected tuple. The bitmap cursor is built
// lazily on the first call after Open or Rescan; an exhausted scan
// keeps reporting ok=false without error.
func (s *ScanState) Next() (engine.Tuple, bool, error) {
	switch s.phase {
	case phaseOpened, phaseRescanned:
		if err := s.startCursor(); err != nil {
			return engine.Tuple{}, false, err
		}
		s.phase = phaseExecuting
	case phaseExecuting:
	default:
		return engine.Tuple{}, false, plan.Internalf("fetch from a scan that is not open")
	}

	descr := s.rel.Descr()
	for {
		tuple, ok, err := s.cursor.Fetch()
		if err != nil {
			return engine.Tuple{}, false, err
		}
		if !ok {
			s.removedByRecheck = s.cursor.RowsRemovedByRecheck()
			return engine.Tuple{}, false, nil
		}

		if len(s.qual) > 0 {
			keep, err := engine.EvalConds(descr, tuple, s.qual)
			if err != nil {
				return engine.Tuple{}, false, err
			}
			if !keep {
				s.removedByFilter++
				continue
			}
		}

		s.removedByRecheck = s.cursor.RowsRemovedByRecheck()
		return s.project(tuple), true, nil
	}
}

func (s *ScanState) startCursor() error {
	fctx := &FetchContext{Rel: s.rel, Counters: s.counters}
	producer := &bitmapProducer{root: fctx, tree: s.bmState}

	descr := s.rel.Descr()
	recheck := func(t engine.Tuple) (bool, error) {
		return evalBitmapNode(descr, t, s.bitmap)
	}

	cursor, err := engine.NewBitmapCursor(s.snap, s.mem, s.rel, s.keyType, producer, recheck)
	if err != nil {
		return err
	}
	s.cursor = cursor
	return nil
}

// project maps a fetched tuple onto the plan's target list. Projection
// is applied uniformly, including to the last tuple before exhaustion.
func (s *ScanState) project(t engine.Tuple) engine.Tuple {
	values := make([]engine.Datum, len(s.projPos))
	for i, pos := range s.projPos {
		values[i] = t.Values[pos]
	}
	return engine.Tuple{Row: t.Row, Values: values}
}

// Rescan discards the current cursor so the next fetch starts over.
// Counters are released but not reallocated; visualization after a
// rescan must tolerate their absence.
func (s *ScanState) Rescan() error {
	switch s.phase {
	case phaseOpened, phaseExecuting, phaseRescanned:
	default:
		return plan.Internalf("rescan of a scan that is not open")
	}

	if s.cursor != nil {
		s.cursor.Close()
		s.cursor = nil
	}
	s.counters = nil
	s.removedByRecheck = 0
	s.removedByFilter = 0
	s.phase = phaseRescanned

	s.logger.Debug("scan restarted", slog.String("table", s.rel.Descr().Name))
	return nil
}

// Close releases the cursor, the counters and the arena. Idempotent.
func (s *ScanState) Close() {
	if s.phase == phaseClosed {
		return
	}

	if s.cursor != nil {
		s.cursor.Close()
		s.cursor = nil
	}
	s.counters = nil
	if s.mem != nil {
		s.mem.Free()
	}
	s.phase = phaseClosed

	s.logger.Debug("scan closed", slog.String("table", s.rel.Descr().Name))
}

// Strategy returns the plan's strategy tag.
func (s *ScanState) Strategy() plan.Strategy { return s.strategy }

// Rel returns the scanned relation.
func (s *ScanState) Rel() *engine.Relation { return s.rel }

// BitmapState returns the root of the bitmap execution-state tree.
func (s *ScanState) BitmapState() PlanState { return s.bmState }

// RecheckCond returns the rendered original qualifier, for display.
func (s *ScanState) RecheckCond() string { return s.recheckCond }

// Qual returns the residual filter.
func (s *ScanState) Qual() []engine.Cond { return s.qual }

// Counters returns the per-index counter sets, or nil when
// instrumentation is off or the scan was restarted.
func (s *ScanState) Counters() []CounterSet { return s.counters }

// RowsRemovedByRecheck returns how many candidate rows the lossy-bitmap
// recheck rejected.
func (s *ScanState) RowsRemovedByRecheck() uint64 { return s.removedByRecheck }

// RowsRemovedByFilter returns how many fetched rows the residual filter
// rejected.
func (s *ScanState) RowsRemovedByFilter() uint64 { return s.removedByFilter }

// Instrumented reports whether counters are currently being collected.
func (s *ScanState) Instrumented() bool { return s.counters != nil }
