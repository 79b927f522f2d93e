package selector

import (
	"fmt"
	"math"
	"os"

	"github.com/signlab/signrec-go/corpus"
)

// cvFolds is the number of cross-validation folds.
const cvFolds = 3

// CV selects by average held-out log-likelihood over k-fold splits of the
// word's sequence list. Each fold fits a fresh model on the training
// sequences and scores it on the held-out ones.
type CV struct {
	*Base
}

// NewCV creates a cross-validation selector for one word.
func NewCV(ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (*CV, error) {
	base, err := NewBase(ts, word, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &CV{Base: base}, nil
}

// Select searches [MinStates, MaxStates) and keeps the candidate with the
// maximum-or-equal average fold score, so ties favor the larger state
// count. Unlike BIC and DIC, a fit or score failure anywhere in the fold
// loop abandons the whole search: the error is logged and a nil model is
// returned, with no constant-state fallback.
func (s *CV) Select() (Model, error) {
	var best Model
	bestScore := math.Inf(-1)

	for n := s.cfg.MinStates; n < s.cfg.MaxStates; n++ {
		score, m, err := s.crossValidate(n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cv selection for %s: %v\n", s.word, err)
			return nil, nil
		}
		if score >= bestScore {
			bestScore = score
			best = m
		}
	}
	return best, nil
}

// crossValidate evaluates one state count. Words with too few sequences to
// fold score 0.0 with the constant-state model standing in. Otherwise the
// returned model is the LAST fold's fit, not a refit on the full data;
// this mirrors the original behavior.
func (s *CV) crossValidate(n int) (float64, Model, error) {
	seqs := s.seqs.Sequences
	if len(seqs) <= cvFolds {
		return 0.0, s.BuildCandidate(s.cfg.ConstantStates), nil
	}

	folds := kfoldIndices(len(seqs), cvFolds)
	total := 0.0
	var last Model
	for _, testIdx := range folds {
		train := corpus.CombineIndices(complement(len(seqs), testIdx), seqs)
		held := corpus.CombineIndices(testIdx, seqs)

		m, err := s.factory(n, s.cfg.Seed, train.X, train.Lengths)
		if err != nil {
			return 0, nil, fmt.Errorf("fit fold with %d states: %w", n, err)
		}
		score, err := m.Score(held.X, held.Lengths)
		if err != nil {
			return 0, nil, fmt.Errorf("score fold with %d states: %w", n, err)
		}
		total += score
		last = m
	}
	return total / float64(len(folds)), last, nil
}
