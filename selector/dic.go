package selector

import (
	"fmt"
	"math"

	"github.com/signlab/signrec-go/corpus"
)

// DIC selects by discriminative information:
//
//	DIC(n) = evidence − antiEvidence
//
// where evidence is the candidate's log-likelihood on its own word's data
// and antiEvidence is its average log-likelihood over every OTHER word's
// data. High DIC rewards models that fit their own word well but
// generalize poorly to the rest of the vocabulary.
type DIC struct {
	*Base
}

// NewDIC creates a DIC selector for one word.
func NewDIC(ts *corpus.TrainingSet, word string, factory Factory, cfg Config) (*DIC, error) {
	base, err := NewBase(ts, word, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &DIC{Base: base}, nil
}

// Select searches [MinStates, MaxStates) and returns the candidate with the
// maximum DIC. A fit or score failure disqualifies that state count only.
// Falls back to the constant-state model when no candidate scores.
func (s *DIC) Select() (Model, error) {
	best := s.BuildCandidate(s.cfg.ConstantStates)
	bestScore := math.Inf(-1)

	for n := s.cfg.MinStates; n < s.cfg.MaxStates; n++ {
		m := s.BuildCandidate(n)
		if m == nil {
			continue
		}
		evidence, err := m.Score(s.data.X, s.data.Lengths)
		if err != nil {
			s.logf("failure on %s with %d states: %v", s.word, n, err)
			continue
		}
		anti, err := s.antiEvidence(m)
		if err != nil {
			s.logf("failure on %s with %d states: %v", s.word, n, err)
			continue
		}
		score := evidence - anti
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

// antiEvidence averages the candidate's log-likelihood over every other
// word's training data. Any single scoring failure fails the whole
// average, disqualifying the candidate.
func (s *DIC) antiEvidence(m Model) (float64, error) {
	total := 0.0
	count := 0
	for _, word := range s.words.Words() {
		if word == s.word {
			continue
		}
		data, _ := s.words.Combined(word)
		score, err := m.Score(data.X, data.Lengths)
		if err != nil {
			return 0, fmt.Errorf("score against %q: %w", word, err)
		}
		total += score
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("no other words to score against")
	}
	return total / float64(count), nil
}
