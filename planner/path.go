// Package planner holds the planner-facing side of the scan bridge:
// the access-path model, the path rewriter that swaps native scan
// strategies for a custom path, and the plan builder lowering a chosen
// custom path into a custom plan node.
package planner

import (
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

// PathKind tags a planner-proposed access path.
type PathKind int

const (
	// PathSeqScan is a plain native full scan. The bridge never
	// touches it; it degrades to a supported strategy elsewhere.
	PathSeqScan PathKind = iota
	// PathSampleScan is a native sampling scan, unsupported by the
	// storage engine.
	PathSampleScan
	// PathBitmapHeap is a native bitmap heap scan over a bitmap
	// subtree.
	PathBitmapHeap
	// PathBitmapAnd intersects child bitmaps (subtree only).
	PathBitmapAnd
	// PathBitmapOr unions child bitmaps (subtree only).
	PathBitmapOr
	// PathBitmapIndex is a leaf single-index bitmap producer
	// (subtree only).
	PathBitmapIndex
	// PathCustom is the opaque bridge-owned path wrapping a native
	// source path.
	PathCustom
)

// Path is a planner-time candidate strategy for reading a relation.
// Cost fields and parallel-safety flags belong to the host planner and
// are copied verbatim when a path is wrapped.
type Path struct {
	Kind PathKind

	StartupCost     float64
	TotalCost       float64
	Rows            float64
	PathKeys        []string
	ParallelAware   bool
	ParallelSafe    bool
	ParallelWorkers int

	// Bitmap-heap paths: the bitmap-producing subtree plus the
	// projection and residual qualifier the framework planned.
	Bitmap     *Path
	TargetList []plan.TargetEntry
	Qual       []engine.Cond

	// Bitmap-subtree nodes.
	Children   []*Path
	IndexID    engine.IndexID
	IndexConds []engine.Cond

	// Custom paths: the strategy tag and the wrapped native source.
	Strategy plan.Strategy
	Source   *Path
}

// IndexOptInfo is the planner's mutable copy of one index's metadata.
// The bridge extends Columns/CanReturn in place during index-shape
// augmentation.
type IndexOptInfo struct {
	ID        engine.IndexID
	Name      string
	Columns   []string
	CanReturn []bool

	// Predicate is the partial-index predicate, nil for full indexes.
	// PredOK records whether the planner proved the predicate
	// satisfied by the query's restrictions.
	Predicate []engine.Cond
	PredOK    bool
}

// RelOptInfo is the planner's bookkeeping for one relation in a query:
// the candidate path lists, the index candidates, and the restriction
// clauses gathered from the query.
type RelOptInfo struct {
	Name         string
	Paths        []*Path
	PartialPaths []*Path
	Indexes      []*IndexOptInfo
	Restrictions []engine.Cond
}
