package planner

import (
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

// CreateBitmapHeapPlan lowers the native bitmap-heap path wrapped by a
// custom path into its plan node, the sub-plan the plan builder later
// inspects. This is the framework half of plan creation: the bridge
// only consumes its output.
func CreateBitmapHeapPlan(path *Path) (plan.Node, error) {
	if path == nil || path.Kind != PathBitmapHeap {
		return nil, plan.Internalf("expected bitmap-heap path, got %v", pathKindName(path))
	}

	bm, err := lowerBitmapSubtree(path.Bitmap)
	if err != nil {
		return nil, err
	}
	recheck, err := plan.RenderBitmapQual(bm)
	if err != nil {
		return nil, err
	}

	return &plan.BitmapHeapScan{
		TargetList:  append([]plan.TargetEntry(nil), path.TargetList...),
		Qual:        plan.CloneConds(path.Qual),
		RecheckCond: recheck,
		Bitmap:      bm,
	}, nil
}

func lowerBitmapSubtree(path *Path) (plan.Node, error) {
	if path == nil {
		return nil, plan.Internalf("bitmap-heap path has no bitmap subtree")
	}

	switch path.Kind {
	case PathBitmapIndex:
		return &plan.BitmapIndexScan{
			IndexID: path.IndexID,
			Conds:   plan.CloneConds(path.IndexConds),
		}, nil
	case PathBitmapAnd, PathBitmapOr:
		children := make([]plan.Node, 0, len(path.Children))
		for _, c := range path.Children {
			node, err := lowerBitmapSubtree(c)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}
		if path.Kind == PathBitmapAnd {
			return &plan.BitmapAnd{Children: children}, nil
		}
		return &plan.BitmapOr{Children: children}, nil
	default:
		return nil, plan.Internalf("unexpected path kind %v in bitmap subtree", pathKindName(path))
	}
}

// BuildCustomScan lowers a chosen custom path plus its already-planned
// sub-plan list into one custom plan node.
//
// The relation is opened only to resolve its storage-engine descriptor
// and closed before returning. A degenerate pass-through result
// wrapper around the sub-plan is unwrapped first. Cost fields are left
// unset; generic plan costing fills them on the framework side.
func BuildCustomScan(rel *RelOptInfo, best *Path, subplans []plan.Node, eng *engine.Engine) (*plan.CustomScan, error) {
	if best == nil || best.Kind != PathCustom || best.Strategy == nil {
		return nil, plan.Internalf("plan builder requires a custom path with a strategy tag")
	}
	if len(subplans) == 0 {
		return nil, plan.Internalf("custom path for %q has no planned sub-plan", rel.Name)
	}

	relation, err := eng.OpenRelation(rel.Name)
	if err != nil {
		return nil, err
	}
	defer relation.Close()
	descr := relation.Descr()

	sub := plan.UnwrapResult(subplans[0])

	switch strategy := best.Strategy.(type) {
	case plan.BitmapHeap:
		bh, ok := sub.(*plan.BitmapHeapScan)
		if !ok {
			return nil, plan.Internalf("bitmap-heap custom path planned a %T sub-plan", sub)
		}

		primary := descr.Primary()
		if primary == nil {
			return nil, plan.Internalf("table %q has no primary index", rel.Name)
		}
		if len(primary.Columns) != 1 {
			return nil, plan.Internalf("primary index %q has %d key fields, bitmap-heap plans require exactly one",
				primary.Name, len(primary.Columns))
		}
		keyType, ok := descr.ColumnType(primary.Columns[0])
		if !ok {
			return nil, plan.Internalf("primary key column %q missing from table %q", primary.Columns[0], rel.Name)
		}

		return &plan.CustomScan{
			Strategy:    strategy,
			TargetList:  append([]plan.TargetEntry(nil), bh.TargetList...),
			Qual:        plan.CloneConds(bh.Qual),
			RecheckCond: bh.RecheckCond,
			KeyType:     keyType,
			Bitmap:      bh.Bitmap.Clone(),
		}, nil

	default:
		return nil, plan.Internalf("unrecognized custom scan strategy %T", strategy)
	}
}

func pathKindName(p *Path) any {
	if p == nil {
		return "<nil>"
	}
	return p.Kind
}
