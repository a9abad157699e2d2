// Package atlaserr defines the error kinds shared across the transit
// atlas pipeline, per the error handling design in spec.md section 7.
package atlaserr

import "errors"

// Recoverable kinds: the caller absorbs these locally (drop a row,
// reset a chain) and keeps going.
var (
	ErrFeedMalformedTime = errors.New("feed: malformed time value")
	ErrFeedOutOfOrder    = errors.New("feed: out-of-order stop_times chain")
	ErrGeometryEmpty     = errors.New("geometry: empty or degenerate feature")
)

// Terminal kinds: the batch cannot produce a correct result and the
// process should report once and exit non-zero.
var (
	ErrFeedMissingTable      = errors.New("feed: required table missing from archive")
	ErrNeighborhoodUnmatched = errors.New("neighborhood: could not match every neighborhood to a stop")
	ErrNoMicroUnits          = errors.New("tessellate: no micro-cells were produced")
	ErrIOFailure             = errors.New("io: failure reading or writing atlas data")
)

// IsTerminal reports whether err should abort the batch with a non-zero
// exit code rather than being absorbed and the affected row/chain
// dropped.
func IsTerminal(err error) bool {
	switch {
	case errors.Is(err, ErrFeedMissingTable),
		errors.Is(err, ErrNeighborhoodUnmatched),
		errors.Is(err, ErrNoMicroUnits),
		errors.Is(err, ErrIOFailure):
		return true
	default:
		return false
	}
}
