package planner

import (
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

// transformPath wraps a native bitmap-heap path into an opaque custom
// path, preserving cost, row estimate, ordering and parallel-safety
// fields verbatim from the wrapped source.
func transformPath(src *Path) *Path {
	return &Path{
		Kind:            PathCustom,
		StartupCost:     src.StartupCost,
		TotalCost:       src.TotalCost,
		Rows:            src.Rows,
		PathKeys:        src.PathKeys,
		ParallelAware:   src.ParallelAware,
		ParallelSafe:    src.ParallelSafe,
		ParallelWorkers: src.ParallelWorkers,
		Strategy:        plan.BitmapHeap{},
		Source:          src,
	}
}

// RewritePaths rewrites the candidate path lists of a relation backed
// by the storage engine. A nil descriptor means the relation is not
// engine-backed and the lists are left untouched.
//
// Full-scan paths pass through unchanged. Sample scans raise
// UnsupportedFeatureError without mutating the lists. Bitmap-heap
// paths are replaced by an opaque custom path at the same position.
// Partial (parallel-candidate) paths that are not plain full scans are
// dropped silently: parallel bitmap-heap execution is unsupported and
// the planner is free to fall back to another strategy.
func RewritePaths(rel *RelOptInfo, descr *engine.TableDescr) error {
	if descr == nil {
		return nil
	}

	paths := make([]*Path, 0, len(rel.Paths))
	for _, path := range rel.Paths {
		switch path.Kind {
		case PathSampleScan:
			return &UnsupportedFeatureError{Relation: rel.Name, Feature: "TABLESAMPLE"}
		case PathBitmapHeap:
			paths = append(paths, transformPath(path))
		default:
			paths = append(paths, path)
		}
	}

	partial := make([]*Path, 0, len(rel.PartialPaths))
	for _, path := range rel.PartialPaths {
		if path.Kind == PathSeqScan {
			partial = append(partial, path)
		}
	}

	rel.Paths = paths
	rel.PartialPaths = partial
	return nil
}

// AugmentIndexes extends every secondary index candidate of a table
// with a declared primary key so that it projects all primary-key
// columns, marked directly returnable. This lets the planner's cost
// model discover index-only execution opportunities.
//
// After augmentation, restriction clauses are re-matched against the
// index candidates; the result reports whether clause matching is
// still possible and is used by the planner to decide eligibility for
// column-presence optimizations. Indexes whose partial predicate is
// not proven satisfied are skipped by the re-match.
func AugmentIndexes(rel *RelOptInfo, descr *engine.TableDescr) bool {
	result := true

	if descr == nil || !descr.HasPrimary {
		return result
	}
	primary := descr.Primary()

	for _, pkCol := range primary.Columns {
		for _, index := range rel.Indexes {
			member := false
			for _, col := range index.Columns {
				if col == pkCol {
					member = true
					break
				}
			}
			if !member {
				index.Columns = append(index.Columns, pkCol)
				index.CanReturn = append(index.CanReturn, true)
			}
		}
	}

	for _, index := range rel.Indexes {
		if len(index.Predicate) > 0 && !index.PredOK {
			continue
		}
		result = !matchRestrictionClauses(rel.Restrictions, index)
	}

	return result
}

// matchRestrictionClauses reports whether any restriction clause can be
// matched to the index's key columns.
func matchRestrictionClauses(restrictions []engine.Cond, index *IndexOptInfo) bool {
	for _, r := range restrictions {
		for _, col := range index.Columns {
			if r.Column == col {
				return true
			}
		}
	}
	return false
}
