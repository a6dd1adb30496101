package bridgescan

import (
	"context"

	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/exec"
	"github.com/hupe1980/bridgescan/explain"
	"github.com/hupe1980/bridgescan/plan"
	"github.com/hupe1980/bridgescan/planner"
)

// Bridge ties the planner-side hooks and the executor-side scan states
// to one storage engine. It is safe for concurrent use; all per-query
// state lives in the plan nodes and scan states it hands out.
type Bridge struct {
	eng    *engine.Engine
	logger *Logger
	opts   options
}

// New creates a Bridge over a storage engine.
func New(eng *engine.Engine, optFns ...Option) *Bridge {
	opts := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bridge{
		eng:    eng,
		logger: opts.logger,
		opts:   opts,
	}
}

// Engine returns the underlying storage engine.
func (b *Bridge) Engine() *engine.Engine {
	return b.eng
}

// RewriteRelationPaths is the planning hook: it rewrites the candidate
// path lists of a relation backed by the engine, replacing native
// bitmap-heap paths with opaque custom paths. Relations the engine does
// not back are left untouched.
func (b *Bridge) RewriteRelationPaths(ctx context.Context, rel *planner.RelOptInfo) error {
	descr, release, err := b.descriptor(rel.Name)
	if err != nil {
		return err
	}
	defer release()

	if err := planner.RewritePaths(rel, descr); err != nil {
		b.logger.LogRewrite(ctx, rel.Name, 0, err)
		return err
	}

	rewritten := 0
	for _, p := range rel.Paths {
		if p.Kind == planner.PathCustom {
			rewritten++
		}
	}
	b.logger.LogRewrite(ctx, rel.Name, rewritten, nil)
	return nil
}

// AugmentRelationIndexes extends the relation's secondary index
// candidates with the primary-key columns and re-matches restriction
// clauses. The result mirrors planner.AugmentIndexes.
func (b *Bridge) AugmentRelationIndexes(rel *planner.RelOptInfo) (bool, error) {
	descr, release, err := b.descriptor(rel.Name)
	if err != nil {
		return true, err
	}
	defer release()

	return planner.AugmentIndexes(rel, descr), nil
}

// descriptor resolves the engine descriptor of a relation. A relation
// the engine does not back yields a nil descriptor, which the planner
// entry points treat as a no-op.
func (b *Bridge) descriptor(name string) (*engine.TableDescr, func(), error) {
	if !b.eng.HasTable(name) {
		return nil, func() {}, nil
	}
	rel, err := b.eng.OpenRelation(name)
	if err != nil {
		return nil, nil, err
	}
	return rel.Descr(), rel.Close, nil
}

// BuildPlan lowers a chosen custom path and its planned sub-plans into
// one immutable custom scan plan node.
func (b *Bridge) BuildPlan(ctx context.Context, rel *planner.RelOptInfo, best *planner.Path, subplans []plan.Node) (*plan.CustomScan, error) {
	cs, err := planner.BuildCustomScan(rel, best, subplans, b.eng)
	b.logger.LogBuildPlan(ctx, rel.Name, err)
	return cs, err
}

// Scan couples a scan state with the relation handle it reads from.
// Closing the scan also closes the handle.
type Scan struct {
	*exec.ScanState
	rel *engine.Relation
}

// Close releases the scan state and the relation handle. Idempotent.
func (s *Scan) Close() {
	s.ScanState.Close()
	s.rel.Close()
}

// NewScan opens a relation and instantiates execution state for a
// custom scan plan over it. One plan node can back many scans.
func (b *Bridge) NewScan(ctx context.Context, cs *plan.CustomScan, table string) (*Scan, error) {
	rel, err := b.eng.OpenRelation(table)
	if err != nil {
		b.logger.LogScanOpen(ctx, table, err)
		return nil, err
	}

	ss, err := exec.NewScanState(cs, rel,
		exec.WithLogger(b.logger.Logger),
		exec.WithArenaChunkSize(b.opts.arenaChunkSize),
	)
	if err != nil {
		rel.Close()
		b.logger.LogScanOpen(ctx, table, err)
		return nil, err
	}

	b.logger.LogScanOpen(ctx, table, nil)
	return &Scan{ScanState: ss, rel: rel}, nil
}

// Explain renders a scan for plan visualization in the given format.
func (b *Bridge) Explain(ss *exec.ScanState, format explain.Format) (string, error) {
	st := explain.NewState(format)
	if err := explain.ExplainCustomScan(st, ss); err != nil {
		return "", err
	}
	return st.Render()
}
