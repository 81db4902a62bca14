package analysis

import "errors"

var (
	// ErrDegenerateBatch means the inputs were well formed but the join
	// produced no linked records.
	ErrDegenerateBatch = errors.New("degenerate batch: no linked records")

	// ErrInsufficientData means a step had fewer observations than it needs.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUndefinedCorrelation means one of the series has zero variance.
	ErrUndefinedCorrelation = errors.New("correlation undefined for constant input")
)
