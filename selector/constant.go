package selector

import "github.com/signlab/signrec-go/corpus"

// Constant fits exactly one candidate with the configured constant state
// count. Baseline strategy, no search.
type Constant struct {
	*Base
}

// NewConstant creates a constant-state selector for one word.
func NewConstant(ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (*Constant, error) {
	base, err := NewBase(ts, word, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &Constant{Base: base}, nil
}

// Select returns the model built with the constant state count, or nil if
// the single fit fails.
func (s *Constant) Select() (Model, error) {
	return s.BuildCandidate(s.cfg.ConstantStates), nil
}
