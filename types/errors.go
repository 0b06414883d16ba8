package types

import "errors"

var (
	// ErrConfiguration is returned before any timestep for invalid mesh, boundary or scheme input.
	ErrConfiguration = errors.New("gokiva: invalid configuration")

	// ErrDivergence indicates NaN or Inf in the temperature field.
	ErrDivergence = errors.New("gokiva: temperature field diverged")

	// ErrNotConverged indicates an iterative solve exhausted its iteration budget.
	ErrNotConverged = errors.New("gokiva: linear solver did not converge")

	// ErrGeometry indicates a meshing inconsistency, e.g. a far-field remesh that moved interior cells.
	ErrGeometry = errors.New("gokiva: geometry inconsistency")
)
