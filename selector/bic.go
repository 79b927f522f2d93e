package selector

import (
	"math"

	"github.com/signlab/signrec-go/corpus"
)

// BIC selects by penalized training likelihood:
//
//	BIC(n) = -2*logL + p*log(N)
//
// where logL is the candidate's log-likelihood on its own training data,
// N is the number of training frames, and p = n² + 2nF − 1 approximates
// the free-parameter count (initial-state + transition + diagonal
// Gaussian emission parameters, F = feature dimensionality).
//
// The loop keeps the candidate with the LARGEST value. True BIC is
// conventionally minimized; the original selection rule maximized it and
// that behavior is preserved here for compatibility.
type BIC struct {
	*Base
}

// NewBIC creates a BIC selector for one word.
func NewBIC(ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (*BIC, error) {
	base, err := NewBase(ts, word, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &BIC{Base: base}, nil
}

// Select searches [MinStates, MaxStates) and returns the candidate with the
// maximum BIC value. Candidates that fail to fit or score are skipped. If
// no candidate ever improves on -inf the constant-state model is returned
// as the fallback.
func (s *BIC) Select() (Model, error) {
	dim := len(s.data.X[0])
	logN := math.Log(float64(len(s.data.X)))

	best := s.BuildCandidate(s.cfg.ConstantStates)
	bestScore := math.Inf(-1)

	for n := s.cfg.MinStates; n < s.cfg.MaxStates; n++ {
		m := s.BuildCandidate(n)
		if m == nil {
			continue
		}
		logL, err := m.Score(s.data.X, s.data.Lengths)
		if err != nil {
			s.logf("failure on %s with %d states: %v", s.word, n, err)
			continue
		}
		p := float64(n*n + 2*n*dim - 1)
		score := -2*logL + p*logN
		if score > bestScore {
			bestScore = score
			best = m
		}
	}

	if best != nil {
		s.logf("model created for %s with %d states", s.word, best.NumStates())
	}
	return best, nil
}
