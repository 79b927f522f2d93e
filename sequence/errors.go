package sequence

import "fmt"

// FitError reports that a model could not be trained for a given state count:
// numerical non-convergence, vanishing likelihood, or insufficient data.
type FitError struct {
	NumStates int
	Reason    string
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit with %d states: %s", e.NumStates, e.Reason)
}

// ScoreError reports that a trained model could not evaluate a sequence:
// dimensionality mismatch or degenerate parameters.
type ScoreError struct {
	Reason string
}

func (e *ScoreError) Error() string {
	return "score: " + e.Reason
}
