package plan

import (
	"errors"
	"fmt"
)

// ErrInternal marks violations of the planner/executor contract this
// bridge relies on: unknown strategy tags, plan-state shapes the bridge
// never builds, descriptor assumptions that do not hold. Such errors
// are never retried or degraded; they must abort the enclosing query
// visibly.
var ErrInternal = errors.New("internal invariant violation")

// InternalError carries the reason for an internal-consistency failure.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInternal, e.Reason)
}

func (e *InternalError) Unwrap() error { return ErrInternal }

// Internalf builds an InternalError from a format string.
func Internalf(format string, args ...any) error {
	return &InternalError{Reason: fmt.Sprintf(format, args...)}
}
