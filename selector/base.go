// Package selector picks, for each vocabulary word, the best-fitting
// hidden-state count for its sequence model. Four strategies share one
// candidate-building primitive: a fixed constant, penalized likelihood
// (BIC), cross-word discrimination (DIC), and k-fold cross-validation.
package selector

import (
	"fmt"
	"os"

	"github.com/signlab/signrec-go/corpus"
	"github.com/signlab/signrec-go/sequence"
)

// Model is the capability a strategy needs from a fitted candidate.
type Model interface {
	Score(X [][]float64, lengths []int) (float64, error)
	NumStates() int
}

// Factory fits a candidate model with numStates hidden states on the given
// combined training data. Strategies never fit models any other way, so a
// test can substitute a deterministic fake.
type Factory func(numStates int, seed int64, X [][]float64, lengths []int) (Model, error)

// HMM returns a Factory fitting diagonal-covariance Gaussian HMMs. The
// template's NumStates and Seed fields are overridden per candidate.
func HMM(template sequence.Config) Factory {
	return func(numStates int, seed int64, X [][]float64, lengths []int) (Model, error) {
		cfg := template
		cfg.NumStates = numStates
		cfg.Seed = seed
		m, err := sequence.Fit(cfg, X, lengths)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Config holds the selection parameters shared by all strategies.
type Config struct {
	ConstantStates int   // state count used by Constant and as the fallback
	MinStates      int   // inclusive lower bound of the candidate range
	MaxStates      int   // exclusive upper bound of the candidate range
	Seed           int64 // passed to every candidate fit
	Verbose        bool  // per-candidate diagnostics on stderr
}

// DefaultConfig returns the conventional selection parameters.
func DefaultConfig() Config {
	return Config{
		ConstantStates: 3,
		MinStates:      2,
		MaxStates:      10,
		Seed:           14,
	}
}

// Selector picks the best model for one word. A nil model with a nil error
// means selection was exhausted: no candidate could be fit. Errors are
// reserved for malformed input.
type Selector interface {
	Select() (Model, error)
}

// Base holds the per-word training data and parameters shared by every
// strategy.
type Base struct {
	words   *corpus.TrainingSet
	word    string
	data    corpus.Combined
	seqs    *corpus.SequenceSet
	factory Factory
	cfg     Config
}

// NewBase prepares selection state for one word. Fails when the word has
// no training frames.
func NewBase(ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (*Base, error) {
	set := ts.Sequences(word)
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("no training sequences for word %q", word)
	}
	data := set.Combine()
	if len(data.X) == 0 {
		return nil, fmt.Errorf("no training frames for word %q", word)
	}
	return &Base{
		words:   ts,
		word:    word,
		data:    data,
		seqs:    set,
		factory: factory,
		cfg:     cfg,
	}, nil
}

// BuildCandidate fits a candidate model with numStates hidden states on
// this word's full training data. Every strategy funnels through here, so
// fitting semantics are identical across strategies. Returns nil when
// fitting fails for any reason.
func (b *Base) BuildCandidate(numStates int) Model {
	m, err := b.factory(numStates, b.cfg.Seed, b.data.X, b.data.Lengths)
	if err != nil {
		b.logf("failure on %s with %d states: %v", b.word, numStates, err)
		return nil
	}
	b.logf("model created for %s with %d states", b.word, numStates)
	return m
}

func (b *Base) logf(format string, args ...any) {
	if b.cfg.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// New creates a selector by strategy name: "constant", "bic", "dic" or "cv".
func New(strategy string, ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (Selector, error) {
	base, err := NewBase(ts, word, factory, cfg)
	if err != nil {
		return nil, err
	}
	switch strategy {
	case "constant":
		return &Constant{Base: base}, nil
	case "bic":
		return &BIC{Base: base}, nil
	case "dic":
		return &DIC{Base: base}, nil
	case "cv":
		return &CV{Base: base}, nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", strategy)
	}
}
