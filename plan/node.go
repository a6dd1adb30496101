// Package plan defines the serializable plan nodes the bridge lowers
// chosen access paths into, and the plan builder producing them.
//
// Plan nodes are created once per query and immutable afterwards; a
// cached plan may instantiate scan state many times. Anything the
// executor mutates is deep-copied out of the plan first.
package plan

import "github.com/hupe1980/bridgescan/engine"

// TargetEntry is one projected output column.
type TargetEntry struct {
	Column string
}

// Node is a plan-tree node.
type Node interface {
	// Clone returns a deep copy of the node and its subtree.
	Clone() Node
}

// Result is a degenerate pass-through wrapper some planners put around
// a plan. The bridge unwraps it before inspecting the real sub-plan.
type Result struct {
	Child Node
}

// Clone returns a deep copy.
func (n *Result) Clone() Node {
	return &Result{Child: cloneNode(n.Child)}
}

// BitmapHeapScan is the framework-planned native node the bridge wraps:
// a heap scan driven by the bitmap-producing subtree in Bitmap.
// RecheckCond is the rendered original, pre-rewrite qualifier, kept
// purely for display; Qual is the residual filter evaluated after
// fetch.
type BitmapHeapScan struct {
	TargetList  []TargetEntry
	Qual        []engine.Cond
	RecheckCond string
	Bitmap      Node
}

// Clone returns a deep copy.
func (n *BitmapHeapScan) Clone() Node {
	return &BitmapHeapScan{
		TargetList:  cloneTargets(n.TargetList),
		Qual:        CloneConds(n.Qual),
		RecheckCond: n.RecheckCond,
		Bitmap:      cloneNode(n.Bitmap),
	}
}

// BitmapAnd intersects the bitmaps of its children.
type BitmapAnd struct {
	Children []Node
}

// Clone returns a deep copy.
func (n *BitmapAnd) Clone() Node {
	return &BitmapAnd{Children: cloneNodes(n.Children)}
}

// BitmapOr unions the bitmaps of its children.
type BitmapOr struct {
	Children []Node
}

// Clone returns a deep copy.
func (n *BitmapOr) Clone() Node {
	return &BitmapOr{Children: cloneNodes(n.Children)}
}

// BitmapIndexScan is a leaf bitmap producer: one index scanned with the
// given conditions, yielding a row-identifier set.
type BitmapIndexScan struct {
	IndexID engine.IndexID
	Conds   []engine.Cond
}

// Clone returns a deep copy.
func (n *BitmapIndexScan) Clone() Node {
	return &BitmapIndexScan{IndexID: n.IndexID, Conds: CloneConds(n.Conds)}
}

// CustomScan is the bridge's plan node: the strategy tag, the copied
// projection and qualifier lists, the primary-key value type recorded
// as opaque payload, and the owned bitmap-producing subtree.
//
// Cost fields are deliberately absent: generic plan costing fills them
// on the framework side after the builder returns.
type CustomScan struct {
	Strategy    Strategy
	TargetList  []TargetEntry
	Qual        []engine.Cond
	RecheckCond string
	KeyType     engine.ValueType
	Bitmap      Node
}

// Clone returns a deep copy.
func (n *CustomScan) Clone() Node {
	return &CustomScan{
		Strategy:    n.Strategy,
		TargetList:  cloneTargets(n.TargetList),
		Qual:        CloneConds(n.Qual),
		RecheckCond: n.RecheckCond,
		KeyType:     n.KeyType,
		Bitmap:      cloneNode(n.Bitmap),
	}
}

// UnwrapResult strips a pass-through Result wrapper, if any.
func UnwrapResult(n Node) Node {
	if r, ok := n.(*Result); ok {
		return r.Child
	}
	return n
}

// CloneConds deep-copies a qualifier list.
func CloneConds(conds []engine.Cond) []engine.Cond {
	if conds == nil {
		return nil
	}
	out := make([]engine.Cond, len(conds))
	copy(out, conds)
	return out
}

func cloneTargets(ts []TargetEntry) []TargetEntry {
	if ts == nil {
		return nil
	}
	out := make([]TargetEntry, len(ts))
	copy(out, ts)
	return out
}

func cloneNode(n Node) Node {
	if n == nil {
		return nil
	}
	return n.Clone()
}

func cloneNodes(ns []Node) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = cloneNode(n)
	}
	return out
}
