// Package signrec is a word-level sign and gesture recognizer over
// landmark frame sequences. Each vocabulary word gets its own Gaussian
// hidden Markov model whose hidden-state count is chosen by a pluggable
// selection strategy; recognition scores every test sequence against
// every word's model and keeps the maximum-likelihood word.
package signrec

import (
	"fmt"

	"github.com/signlab/signrec-go/corpus"
	"github.com/signlab/signrec-go/recognizer"
	"github.com/signlab/signrec-go/selector"
	"github.com/signlab/signrec-go/sequence"
)

// Pipeline runs selection and recognition with fixed parameters.
type Pipeline struct {
	Strategy  string
	Selection selector.Config
	Training  sequence.Config
	Factory   selector.Factory
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStrategy sets the selection strategy: constant, bic, dic or cv.
func WithStrategy(name string) Option {
	return func(p *Pipeline) {
		p.Strategy = name
	}
}

// WithSelection sets the selection parameters.
func WithSelection(cfg selector.Config) Option {
	return func(p *Pipeline) {
		p.Selection = cfg
	}
}

// WithTraining sets the per-candidate training parameters. NumStates and
// Seed are overridden per candidate during selection.
func WithTraining(cfg sequence.Config) Option {
	return func(p *Pipeline) {
		p.Training = cfg
	}
}

// WithFactory replaces the candidate-model factory, mainly for tests.
func WithFactory(f selector.Factory) Option {
	return func(p *Pipeline) {
		p.Factory = f
	}
}

// New creates a Pipeline with BIC selection and default parameters.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		Strategy:  "bic",
		Selection: selector.DefaultConfig(),
		Training:  sequence.DefaultConfig(0, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Factory == nil {
		p.Factory = selector.HMM(p.Training)
	}
	return p
}

// TrainAll selects one model per vocabulary word, visiting words in
// sorted order for reproducible runs. A word whose selection is exhausted
// maps to nil; recognition later skips it. Malformed training data is the
// only error.
func (p *Pipeline) TrainAll(ts *corpus.TrainingSet) (map[string]selector.Model, error) {
	models := make(map[string]selector.Model)
	for _, word := range ts.Words() {
		s, err := selector.New(p.Strategy, ts, word, p.Factory, p.Selection)
		if err != nil {
			return nil, fmt.Errorf("selector for %q: %w", word, err)
		}
		m, err := s.Select()
		if err != nil {
			return nil, fmt.Errorf("select for %q: %w", word, err)
		}
		models[word] = m
	}
	return models, nil
}

// Recognize scores every test sequence against the trained models.
func (p *Pipeline) Recognize(models map[string]selector.Model, ts *corpus.TestSet) ([]recognizer.ScoreMap, []string) {
	scorers := make(map[string]recognizer.Scorer, len(models))
	for word, m := range models {
		if m == nil {
			scorers[word] = nil
			continue
		}
		scorers[word] = m
	}
	return recognizer.Recognize(scorers, ts)
}

// SequenceModels extracts the concrete HMMs from a selection result for
// persistence. Nil entries and non-HMM models (test fakes) are skipped.
func SequenceModels(models map[string]selector.Model) map[string]*sequence.Model {
	out := make(map[string]*sequence.Model)
	for word, m := range models {
		if hm, ok := m.(*sequence.Model); ok {
			out[word] = hm
		}
	}
	return out
}

// Accuracy returns the fraction of guesses matching the true words,
// counted over items whose truth is known. Returns 0 when nothing can be
// judged.
func Accuracy(guesses, truth []string) float64 {
	correct, total := 0, 0
	for i := range guesses {
		if i >= len(truth) || truth[i] == "" {
			continue
		}
		total++
		if guesses[i] == truth[i] {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
