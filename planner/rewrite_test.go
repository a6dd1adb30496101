package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
)

func ordersDescr() *engine.TableDescr {
	return &engine.TableDescr{
		Name: "orders",
		Columns: []engine.Column{
			{Name: "id", Type: engine.TypeInt64},
			{Name: "status", Type: engine.TypeString},
			{Name: "amount", Type: engine.TypeFloat64},
		},
		Indexes: []engine.IndexDescr{
			{ID: 1, Name: "orders_pkey", Columns: []string{"id"}, Unique: true},
			{ID: 2, Name: "orders_status_idx", Columns: []string{"status"}},
		},
		PrimaryIndex: 0,
		HasPrimary:   true,
	}
}

func bitmapHeapPath() *Path {
	return &Path{
		Kind:            PathBitmapHeap,
		StartupCost:     5.5,
		TotalCost:       120.25,
		Rows:            42,
		PathKeys:        []string{"id"},
		ParallelSafe:    true,
		ParallelWorkers: 2,
		Bitmap: &Path{
			Kind:       PathBitmapIndex,
			IndexID:    2,
			IndexConds: []engine.Cond{{Column: "status", Op: engine.OpEq, Value: "new"}},
		},
	}
}

func TestRewritePaths_WrapsBitmapHeap(t *testing.T) {
	src := bitmapHeapPath()
	rel := &RelOptInfo{
		Name:  "orders",
		Paths: []*Path{{Kind: PathSeqScan}, src},
	}

	require.NoError(t, RewritePaths(rel, ordersDescr()))
	require.Len(t, rel.Paths, 2)

	assert.Equal(t, PathSeqScan, rel.Paths[0].Kind, "full scans pass through unchanged")

	custom := rel.Paths[1]
	require.Equal(t, PathCustom, custom.Kind)
	assert.Equal(t, plan.BitmapHeap{}, custom.Strategy)
	assert.Same(t, src, custom.Source)

	// estimate and parallel fields copied verbatim
	assert.Equal(t, src.StartupCost, custom.StartupCost)
	assert.Equal(t, src.TotalCost, custom.TotalCost)
	assert.Equal(t, src.Rows, custom.Rows)
	assert.Equal(t, src.PathKeys, custom.PathKeys)
	assert.Equal(t, src.ParallelAware, custom.ParallelAware)
	assert.Equal(t, src.ParallelSafe, custom.ParallelSafe)
	assert.Equal(t, src.ParallelWorkers, custom.ParallelWorkers)
}

func TestRewritePaths_Idempotent(t *testing.T) {
	rel := &RelOptInfo{
		Name:  "orders",
		Paths: []*Path{{Kind: PathSeqScan}, bitmapHeapPath()},
	}

	require.NoError(t, RewritePaths(rel, ordersDescr()))
	first := append([]*Path(nil), rel.Paths...)

	require.NoError(t, RewritePaths(rel, ordersDescr()))
	require.Len(t, rel.Paths, len(first))
	for i := range first {
		assert.Same(t, first[i], rel.Paths[i], "second rewrite must not change already-rewritten paths")
	}
}

func TestRewritePaths_NilDescrNoOp(t *testing.T) {
	src := bitmapHeapPath()
	rel := &RelOptInfo{
		Name:         "alien",
		Paths:        []*Path{src},
		PartialPaths: []*Path{{Kind: PathBitmapHeap}},
	}

	require.NoError(t, RewritePaths(rel, nil))
	assert.Same(t, src, rel.Paths[0])
	assert.Len(t, rel.PartialPaths, 1)
}

func TestRewritePaths_SampleScanRejected(t *testing.T) {
	rel := &RelOptInfo{
		Name: "orders",
		Paths: []*Path{
			bitmapHeapPath(),
			{Kind: PathSampleScan},
		},
		PartialPaths: []*Path{{Kind: PathBitmapHeap}},
	}
	before := append([]*Path(nil), rel.Paths...)
	beforePartial := append([]*Path(nil), rel.PartialPaths...)

	err := RewritePaths(rel, ordersDescr())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	var ufe *UnsupportedFeatureError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "orders", ufe.Relation)
	assert.Equal(t, "TABLESAMPLE", ufe.Feature)

	// rejection must leave the lists untouched
	assert.Equal(t, before, rel.Paths)
	assert.Equal(t, beforePartial, rel.PartialPaths)
}

func TestRewritePaths_StripsPartialPaths(t *testing.T) {
	seq := &Path{Kind: PathSeqScan}
	rel := &RelOptInfo{
		Name: "orders",
		PartialPaths: []*Path{
			{Kind: PathBitmapHeap},
			seq,
			{Kind: PathBitmapIndex},
		},
	}

	require.NoError(t, RewritePaths(rel, ordersDescr()))
	require.Len(t, rel.PartialPaths, 1)
	assert.Same(t, seq, rel.PartialPaths[0])
}

func TestAugmentIndexes_AddsPrimaryColumns(t *testing.T) {
	statusIdx := &IndexOptInfo{
		ID:        2,
		Name:      "orders_status_idx",
		Columns:   []string{"status"},
		CanReturn: []bool{false},
	}
	rel := &RelOptInfo{
		Name:         "orders",
		Indexes:      []*IndexOptInfo{statusIdx},
		Restrictions: []engine.Cond{{Column: "status", Op: engine.OpEq, Value: "new"}},
	}

	result := AugmentIndexes(rel, ordersDescr())

	assert.Equal(t, []string{"status", "id"}, statusIdx.Columns)
	assert.Equal(t, []bool{false, true}, statusIdx.CanReturn)
	assert.False(t, result, "restriction matches the index, so re-matching reports a hit")
}

func TestAugmentIndexes_PrimaryColumnAlreadyPresent(t *testing.T) {
	idx := &IndexOptInfo{
		ID:        2,
		Name:      "orders_id_status_idx",
		Columns:   []string{"id", "status"},
		CanReturn: []bool{true, false},
	}
	rel := &RelOptInfo{Name: "orders", Indexes: []*IndexOptInfo{idx}}

	AugmentIndexes(rel, ordersDescr())
	assert.Equal(t, []string{"id", "status"}, idx.Columns, "present columns are not duplicated")
}

func TestAugmentIndexes_LastIndexDecides(t *testing.T) {
	matched := &IndexOptInfo{ID: 2, Name: "a", Columns: []string{"status"}, CanReturn: []bool{false}}
	unmatched := &IndexOptInfo{ID: 3, Name: "b", Columns: []string{"amount"}, CanReturn: []bool{false}}
	rel := &RelOptInfo{
		Name:         "orders",
		Indexes:      []*IndexOptInfo{matched, unmatched},
		Restrictions: []engine.Cond{{Column: "status", Op: engine.OpEq, Value: "new"}},
	}

	result := AugmentIndexes(rel, ordersDescr())
	assert.True(t, result, "only the last index's re-match decides the result")
}

func TestAugmentIndexes_SkipsUnprovenPartialIndex(t *testing.T) {
	partial := &IndexOptInfo{
		ID:        2,
		Name:      "orders_status_partial",
		Columns:   []string{"status"},
		CanReturn: []bool{false},
		Predicate: []engine.Cond{{Column: "amount", Op: engine.OpGt, Value: 0.0}},
		PredOK:    false,
	}
	rel := &RelOptInfo{
		Name:         "orders",
		Indexes:      []*IndexOptInfo{partial},
		Restrictions: []engine.Cond{{Column: "status", Op: engine.OpEq, Value: "new"}},
	}

	result := AugmentIndexes(rel, ordersDescr())
	assert.True(t, result, "unproven partial index is skipped by the re-match")
	assert.Equal(t, []string{"status", "id"}, partial.Columns, "augmentation itself still applies")
}

func TestAugmentIndexes_NoPrimary(t *testing.T) {
	descr := ordersDescr()
	descr.HasPrimary = false

	idx := &IndexOptInfo{ID: 2, Name: "ix", Columns: []string{"status"}, CanReturn: []bool{false}}
	rel := &RelOptInfo{Name: "orders", Indexes: []*IndexOptInfo{idx}}

	assert.True(t, AugmentIndexes(rel, descr))
	assert.Equal(t, []string{"status"}, idx.Columns)
}
