package ground

import (
	"fmt"

	"github.com/notargets/gokiva/types"
)

var (
	ErrConfiguration = types.ErrConfiguration
	ErrDivergence    = types.ErrDivergence
	ErrNotConverged  = types.ErrNotConverged
	ErrGeometry      = types.ErrGeometry
)

// StepError wraps a fatal timestep failure with the step index and scheme.
type StepError struct {
	Step    int
	Time    float64
	Scheme  string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t = %g s, %s): %v", e.Step, e.Time, e.Scheme, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
