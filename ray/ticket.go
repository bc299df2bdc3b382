package ray

// Ticket is the per-trace context threaded through every recursive call of
// a single camera ray's trace: recursion depth, adaptive-sampling
// bookkeeping, an importance weight, a cooperative cancellation flag, and
// an RNG stream index so that repeated traces of the same ray are
// reproducible.
type Ticket struct {
	RecursionDepth int
	MaxDepth       int

	Weight       float64
	AdaptiveDepth int

	Cancelled bool

	RNGStream int

	// SubsurfaceDepth tracks recursion through subsurface-scattering
	// re-entry, tracked separately from reflect/refract depth since it has
	// its own configured maximum.
	SubsurfaceDepth int
}

// NewTicket returns a fresh top-of-trace ticket: depth zero, full weight.
func NewTicket(maxDepth int, rngStream int) Ticket {
	return Ticket{
		MaxDepth:  maxDepth,
		Weight:    1.0,
		RNGStream: rngStream,
	}
}

// Descend returns the ticket a recursive (reflect/refract) trace should
// carry: one deeper, weight scaled by the new ray's importance.
func (t Ticket) Descend(weightScale float64) Ticket {
	next := t
	next.RecursionDepth++
	next.Weight *= weightScale
	return next
}

// ExceedsDepth reports whether this ticket has recursed past its
// configured maximum and should terminate the trace with black/background.
func (t Ticket) ExceedsDepth() bool {
	return t.RecursionDepth >= t.MaxDepth
}

// BelowImportanceThreshold reports whether the ticket's accumulated weight
// has fallen below a threshold worth continuing to trace.
func (t Ticket) BelowImportanceThreshold(threshold float64) bool {
	return t.Weight < threshold
}
