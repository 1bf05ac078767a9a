package quant

import "errors"

// Error kinds surfaced by the analysis pipeline. Callers test with
// errors.Is; call sites wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrInsufficientData means fewer than MinRawDays raw days, fewer than
	// MinFeatureRows valid feature rows after lagged filtering, or an empty
	// historical series where one is required.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingParameter means a required identifying parameter (symbol or
	// analysis id) was not supplied.
	ErrMissingParameter = errors.New("missing parameter")
)

// Minimum-data guards for the feature-importance analyzer.
const (
	MinRawDays     = 30
	MinFeatureRows = 10
)
