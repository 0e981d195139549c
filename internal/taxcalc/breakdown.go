package taxcalc

// Breakdown pairs the outputs of both regimes for the same input.
type Breakdown struct {
	Old Output `json:"old"`
	New Output `json:"new"`
}

// For returns the output computed for regime.
func (b Breakdown) For(regime Regime) Output {
	if regime == New {
		return b.New
	}
	return b.Old
}

// BreakdownTrace holds the evaluation trace of each regime.
type BreakdownTrace struct {
	Old Trace `json:"old"`
	New Trace `json:"new"`
}

// Build evaluates both regimes independently.
func Build(in Input) Breakdown {
	return Breakdown{
		Old: Evaluate(in, Old),
		New: Evaluate(in, New),
	}
}

// BuildWithTrace evaluates both regimes and keeps their traces.
func BuildWithTrace(in Input) (Breakdown, BreakdownTrace) {
	oldOut, oldTrace := EvaluateWithTrace(in, Old)
	newOut, newTrace := EvaluateWithTrace(in, New)
	return Breakdown{Old: oldOut, New: newOut}, BreakdownTrace{Old: oldTrace, New: newTrace}
}
