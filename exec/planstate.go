package exec

import (
	"github.com/hupe1980/bridgescan/bitmap"
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

// PlanState is one node of the bitmap combinator execution-state tree
// feeding the bitmap cursor. Internal nodes are OR/AND combinators
// over child bitmaps, leaves are single-index bitmap producers.
//
// The tree is owned by the scan state; plan visualization walks it but
// never mutates it, except for the combinators' child-count field used
// to suppress the generic renderer's own recursion.
type PlanState interface {
	// PlanNode returns the plan node this state was initialized from.
	PlanNode() plan.Node
	// Children returns the child states.
	Children() []PlanState

	rowBitmap(fctx *FetchContext) (*bitmap.RowSet, bool, error)
}

// BitmapAndState intersects the bitmaps of its children.
type BitmapAndState struct {
	node     *plan.BitmapAnd
	children []PlanState
	nplans   int
}

// PlanNode returns the underlying plan node.
func (s *BitmapAndState) PlanNode() plan.Node { return s.node }

// Children returns the child states.
func (s *BitmapAndState) Children() []PlanState { return s.children }

// NPlans returns the advertised child count.
func (s *BitmapAndState) NPlans() int { return s.nplans }

// SetNPlans overrides the advertised child count.
func (s *BitmapAndState) SetNPlans(n int) { s.nplans = n }

func (s *BitmapAndState) rowBitmap(fctx *FetchContext) (*bitmap.RowSet, bool, error) {
	return combineChildBitmaps(s.children, fctx, func(acc, child *bitmap.RowSet) {
		acc.And(child)
	})
}

// BitmapOrState unions the bitmaps of its children.
type BitmapOrState struct {
	node     *plan.BitmapOr
	children []PlanState
	nplans   int
}

// PlanNode returns the underlying plan node.
func (s *BitmapOrState) PlanNode() plan.Node { return s.node }

// Children returns the child states.
func (s *BitmapOrState) Children() []PlanState { return s.children }

// NPlans returns the advertised child count.
func (s *BitmapOrState) NPlans() int { return s.nplans }

// SetNPlans overrides the advertised child count.
func (s *BitmapOrState) SetNPlans(n int) { s.nplans = n }

func (s *BitmapOrState) rowBitmap(fctx *FetchContext) (*bitmap.RowSet, bool, error) {
	return combineChildBitmaps(s.children, fctx, func(acc, child *bitmap.RowSet) {
		acc.Or(child)
	})
}

// BitmapIndexScanState is a leaf bitmap producer over one index.
type BitmapIndexScanState struct {
	node *plan.BitmapIndexScan
}

// PlanNode returns the underlying plan node.
func (s *BitmapIndexScanState) PlanNode() plan.Node { return s.node }

// Children returns the child states; leaves have none.
func (s *BitmapIndexScanState) Children() []PlanState { return nil }

// IndexID returns the scanned index's identifier.
func (s *BitmapIndexScanState) IndexID() engine.IndexID { return s.node.IndexID }

// Conds returns the index conditions.
func (s *BitmapIndexScanState) Conds() []engine.Cond { return s.node.Conds }

func (s *BitmapIndexScanState) rowBitmap(fctx *FetchContext) (*bitmap.RowSet, bool, error) {
	rows, lossy, err := fctx.Rel.IndexBitmap(s.node.IndexID, s.node.Conds)
	if err != nil {
		return nil, false, err
	}

	if fctx.Counters != nil {
		pos, ok := fctx.Rel.Descr().IndexPosition(s.node.IndexID)
		if !ok {
			return nil, false, plan.Internalf("bitmap index scan references unknown index %d", s.node.IndexID)
		}
		fctx.Counters[pos].Scans++
		fctx.Counters[pos].Tuples += rows.Cardinality()
	}

	return rows, lossy, nil
}

func combineChildBitmaps(children []PlanState, fctx *FetchContext, merge func(acc, child *bitmap.RowSet)) (*bitmap.RowSet, bool, error) {
	if len(children) == 0 {
		return nil, false, plan.Internalf("bitmap combinator has no children")
	}

	var acc *bitmap.RowSet
	lossy := false
	for _, child := range children {
		rows, childLossy, err := child.rowBitmap(fctx)
		if err != nil {
			return nil, false, err
		}
		lossy = lossy || childLossy
		if acc == nil {
			acc = rows.Clone()
		} else {
			merge(acc, rows)
		}
	}
	return acc, lossy, nil
}

// initBitmapState builds the execution-state tree for a bitmap
// sub-plan. Any node kind the bridge did not build is an internal
// invariant violation.
func initBitmapState(n plan.Node) (PlanState, error) {
	switch node := n.(type) {
	case *plan.BitmapIndexScan:
		return &BitmapIndexScanState{node: node}, nil
	case *plan.BitmapAnd:
		children, err := initBitmapChildren(node.Children)
		if err != nil {
			return nil, err
		}
		return &BitmapAndState{node: node, children: children, nplans: len(children)}, nil
	case *plan.BitmapOr:
		children, err := initBitmapChildren(node.Children)
		if err != nil {
			return nil, err
		}
		return &BitmapOrState{node: node, children: children, nplans: len(children)}, nil
	default:
		return nil, plan.Internalf("cannot initialize scan state for plan node %T", n)
	}
}

func initBitmapChildren(nodes []plan.Node) ([]PlanState, error) {
	children := make([]PlanState, 0, len(nodes))
	for _, n := range nodes {
		st, err := initBitmapState(n)
		if err != nil {
			return nil, err
		}
		children = append(children, st)
	}
	return children, nil
}

// bitmapProducer adapts the state tree plus fetch context to the
// engine's BitmapProducer interface.
type bitmapProducer struct {
	root *FetchContext
	tree PlanState
}

func (p *bitmapProducer) RowBitmap() (*bitmap.RowSet, bool, error) {
	return p.tree.rowBitmap(p.root)
}
