package exec

import (
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

// evalBitmapNode re-evaluates the qualifier implied by a bitmap subtree
// against a fetched tuple. Used as the recheck for lossy bitmaps, where
// the row-identifier set over-approximates the matching rows.
func evalBitmapNode(d *engine.TableDescr, t engine.Tuple, n plan.Node) (bool, error) {
	switch node := n.(type) {
	case *plan.BitmapIndexScan:
		return engine.EvalConds(d, t, node.Conds)
	case *plan.BitmapAnd:
		for _, c := range node.Children {
			ok, err := evalBitmapNode(d, t, c)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *plan.BitmapOr:
		for _, c := range node.Children {
			ok, err := evalBitmapNode(d, t, c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, plan.Internalf("cannot recheck plan node %T", n)
	}
}
