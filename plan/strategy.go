package plan

// Strategy is the closed set of scan strategies the bridge can lower
// to a custom plan node. Dispatch is by exhaustive type switch: adding
// a variant is a compile-time-checked extension point, and an unknown
// variant reaching a switch is an internal invariant violation.
type Strategy interface {
	strategy()
	Name() string
}

// BitmapHeap is the bitmap-indexed heap scan strategy: candidate rows
// come from a bitmap merged out of one or more index scans, are fetched
// from the heap in row order, and rechecked when the bitmap is lossy.
type BitmapHeap struct{}

func (BitmapHeap) strategy() {}

// Name returns the strategy headline used in plan visualization.
func (BitmapHeap) Name() string { return "Bitmap Heap Scan" }
