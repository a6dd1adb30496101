package bridgescan

import (
	"github.com/hupe1980/bridgescan/engine"
	"github.com/hupe1980/bridgescan/plan"
	"github.com/hupe1980/bridgescan/planner"
)

// The two error classes the bridge surfaces, re-exported so callers can
// test with errors.Is against the root package alone.
var (
	// ErrUnsupportedFeature marks query shapes the bridge deliberately
	// rejects, such as TABLESAMPLE on an engine-backed table.
	ErrUnsupportedFeature = planner.ErrUnsupportedFeature

	// ErrInternal marks broken invariants between planning and
	// execution. It always indicates a bug, never bad user input.
	ErrInternal = plan.ErrInternal

	// ErrNotFound is returned when a table or row does not exist.
	ErrNotFound = engine.ErrNotFound
)

// UnsupportedFeatureError carries the relation and feature of a
// rejected query shape. See planner.UnsupportedFeatureError.
type UnsupportedFeatureError = planner.UnsupportedFeatureError

// InternalError carries the reason of a broken invariant. See
// plan.InternalError.
type InternalError = plan.InternalError
