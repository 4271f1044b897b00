package domain

import "errors"

// Error kinds recoverable within a single cycle. None of these are fatal to
// the process: the engine skips the entry or the whole cycle and keeps its
// state untouched.
var (
	// ErrInvalidStop is returned by sizing when the stop distance is <= 0
	ErrInvalidStop = errors.New("stop distance must be positive")

	// ErrDegenerateNotional is returned when the capped notional is <= 0
	ErrDegenerateNotional = errors.New("sized notional is not positive")

	// ErrDataUnavailable marks a failed market-data fetch; the cycle is
	// skipped with no state mutation
	ErrDataUnavailable = errors.New("market data unavailable")
)
