package planner

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFeature is raised at plan-rewrite time for native scan
// strategies with no storage-engine equivalent. It is user facing and
// aborts planning for the query; it is never retried or degraded.
var ErrUnsupportedFeature = errors.New("feature not supported")

// UnsupportedFeatureError names the relation and the unsupported
// strategy.
type UnsupportedFeatureError struct {
	Relation string
	Feature  string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("table %q does not support %s: %s is not supported for bridge tables yet, please send a bug report",
		e.Relation, e.Feature, e.Feature)
}

func (e *UnsupportedFeatureError) Unwrap() error { return ErrUnsupportedFeature }
