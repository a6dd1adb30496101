package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

func newOrdersEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New()
	require.NoError(t, e.CreateTable(ordersDescr()))
	return e
}

func TestCreateBitmapHeapPlan(t *testing.T) {
	path := bitmapHeapPath()
	path.TargetList = []plan.TargetEntry{{Column: "id"}, {Column: "status"}}
	path.Qual = []engine.Cond{{Column: "amount", Op: engine.OpGt, Value: 10.0}}

	node, err := CreateBitmapHeapPlan(path)
	require.NoError(t, err)

	bh, ok := node.(*plan.BitmapHeapScan)
	require.True(t, ok)
	assert.Equal(t, path.TargetList, bh.TargetList)
	assert.Equal(t, path.Qual, bh.Qual)
	assert.Equal(t, "status = 'new'", bh.RecheckCond)

	leaf, ok := bh.Bitmap.(*plan.BitmapIndexScan)
	require.True(t, ok)
	assert.Equal(t, engine.IndexID(2), leaf.IndexID)
}

func TestCreateBitmapHeapPlan_Combinators(t *testing.T) {
	path := bitmapHeapPath()
	path.Bitmap = &Path{
		Kind: PathBitmapOr,
		Children: []*Path{
			{Kind: PathBitmapIndex, IndexID: 2, IndexConds: []engine.Cond{{Column: "status", Op: engine.OpEq, Value: "new"}}},
			{Kind: PathBitmapAnd, Children: []*Path{
				{Kind: PathBitmapIndex, IndexID: 3, IndexConds: []engine.Cond{{Column: "amount", Op: engine.OpGt, Value: 1.0}}},
				{Kind: PathBitmapIndex, IndexID: 3, IndexConds: []engine.Cond{{Column: "amount", Op: engine.OpLt, Value: 9.0}}},
			}},
		},
	}

	node, err := CreateBitmapHeapPlan(path)
	require.NoError(t, err)

	bh := node.(*plan.BitmapHeapScan)
	or, ok := bh.Bitmap.(*plan.BitmapOr)
	require.True(t, ok)
	require.Len(t, or.Children, 2)
	_, ok = or.Children[1].(*plan.BitmapAnd)
	assert.True(t, ok)
	assert.Equal(t, "(status = 'new' OR (amount > 1 AND amount < 9))", bh.RecheckCond)
}

func TestCreateBitmapHeapPlan_WrongKind(t *testing.T) {
	_, err := CreateBitmapHeapPlan(&Path{Kind: PathSeqScan})
	assert.ErrorIs(t, err, plan.ErrInternal)

	_, err = CreateBitmapHeapPlan(nil)
	assert.ErrorIs(t, err, plan.ErrInternal)

	// bitmap subtree must only hold bitmap node kinds
	_, err = CreateBitmapHeapPlan(&Path{
		Kind:   PathBitmapHeap,
		Bitmap: &Path{Kind: PathSeqScan},
	})
	assert.ErrorIs(t, err, plan.ErrInternal)
}

func customPathOverOrders(t *testing.T) (*RelOptInfo, *Path, []plan.Node) {
	t.Helper()

	src := bitmapHeapPath()
	src.TargetList = []plan.TargetEntry{{Column: "id"}, {Column: "status"}}
	rel := &RelOptInfo{Name: "orders", Paths: []*Path{src}}
	require.NoError(t, RewritePaths(rel, ordersDescr()))
	best := rel.Paths[0]
	require.Equal(t, PathCustom, best.Kind)

	sub, err := CreateBitmapHeapPlan(src)
	require.NoError(t, err)
	return rel, best, []plan.Node{sub}
}

func TestBuildCustomScan(t *testing.T) {
	eng := newOrdersEngine(t)
	rel, best, subplans := customPathOverOrders(t)

	cs, err := BuildCustomScan(rel, best, subplans, eng)
	require.NoError(t, err)

	assert.Equal(t, plan.BitmapHeap{}, cs.Strategy)
	assert.Equal(t, engine.TypeInt64, cs.KeyType)
	assert.Equal(t, []plan.TargetEntry{{Column: "id"}, {Column: "status"}}, cs.TargetList)
	assert.Equal(t, "status = 'new'", cs.RecheckCond)
	require.NotNil(t, cs.Bitmap)

	// builder must own its bitmap copy
	orig := subplans[0].(*plan.BitmapHeapScan).Bitmap.(*plan.BitmapIndexScan)
	built := cs.Bitmap.(*plan.BitmapIndexScan)
	assert.NotSame(t, orig, built)
	assert.Equal(t, orig.IndexID, built.IndexID)
}

func TestBuildCustomScan_UnwrapsResult(t *testing.T) {
	eng := newOrdersEngine(t)
	rel, best, subplans := customPathOverOrders(t)
	subplans[0] = &plan.Result{Child: subplans[0]}

	cs, err := BuildCustomScan(rel, best, subplans, eng)
	require.NoError(t, err)
	assert.Equal(t, plan.BitmapHeap{}, cs.Strategy)
}

func TestBuildCustomScan_CompositePrimaryKey(t *testing.T) {
	descr := ordersDescr()
	descr.Name = "pairs"
	descr.Indexes[0].Columns = []string{"id", "status"}
	eng := engine.New()
	require.NoError(t, eng.CreateTable(descr))

	rel, best, subplans := customPathOverOrders(t)
	rel.Name = "pairs"

	_, err := BuildCustomScan(rel, best, subplans, eng)
	require.Error(t, err)
	assert.ErrorIs(t, err, plan.ErrInternal)
}

func TestBuildCustomScan_NoPrimaryKey(t *testing.T) {
	descr := ordersDescr()
	descr.Name = "heap_only"
	descr.HasPrimary = false
	eng := engine.New()
	require.NoError(t, eng.CreateTable(descr))

	rel, best, subplans := customPathOverOrders(t)
	rel.Name = "heap_only"

	_, err := BuildCustomScan(rel, best, subplans, eng)
	assert.ErrorIs(t, err, plan.ErrInternal)
}

func TestBuildCustomScan_InvalidInputs(t *testing.T) {
	eng := newOrdersEngine(t)
	rel, best, subplans := customPathOverOrders(t)

	_, err := BuildCustomScan(rel, &Path{Kind: PathSeqScan}, subplans, eng)
	assert.ErrorIs(t, err, plan.ErrInternal, "non-custom path")

	_, err = BuildCustomScan(rel, best, nil, eng)
	assert.ErrorIs(t, err, plan.ErrInternal, "missing sub-plan")

	_, err = BuildCustomScan(rel, best, []plan.Node{&plan.BitmapAnd{}}, eng)
	assert.ErrorIs(t, err, plan.ErrInternal, "sub-plan of the wrong shape")

	_, err = BuildCustomScan(&RelOptInfo{Name: "missing"}, best, subplans, eng)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}
