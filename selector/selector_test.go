package selector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signlab/signrec-go/corpus"
)

// fakeModel is a deterministic stand-in for a fitted sequence model.
type fakeModel struct {
	states    int
	trainLens []int // lengths the model was fit on
	score     func(X [][]float64, lengths []int) (float64, error)
}

func (m *fakeModel) Score(X [][]float64, lengths []int) (float64, error) {
	return m.score(X, lengths)
}

func (m *fakeModel) NumStates() int { return m.states }

// fakeFactory builds fakeModels. failFor marks state counts whose fit
// fails; scoreFn computes a score from the state count and the scored data.
func fakeFactory(scoreFn func(n int, X [][]float64) (float64, error), failFor map[int]bool) Factory {
	return func(n int, seed int64, X [][]float64, lengths []int) (Model, error) {
		if failFor[n] {
			return nil, errors.New("fit diverged")
		}
		m := &fakeModel{states: n, trainLens: append([]int(nil), lengths...)}
		m.score = func(X [][]float64, lengths []int) (float64, error) {
			return scoreFn(n, X)
		}
		return m, nil
	}
}

// taggedSeq builds a sequence of the given length whose every frame holds
// tag, so a fake Score can tell which word's data it received.
func taggedSeq(length int, tag float64) [][]float64 {
	seq := make([][]float64, length)
	for i := range seq {
		seq[i] = []float64{tag}
	}
	return seq
}

// trainingSet builds a word -> tag corpus with nSeqs sequences per word.
// Sequence i of a word has length i+1.
func trainingSet(tags map[string]float64, nSeqs int) *corpus.TrainingSet {
	ts := corpus.NewTrainingSet()
	for word, tag := range tags {
		for i := 0; i < nSeqs; i++ {
			ts.Add(word, taggedSeq(i+1, tag))
		}
	}
	return ts
}

func flatScore(v float64) func(int, [][]float64) (float64, error) {
	return func(int, [][]float64) (float64, error) { return v, nil }
}

func TestConstantSelect(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()

	s, err := NewConstant(ts, "GO", fakeFactory(flatScore(-1), nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, cfg.ConstantStates, m.NumStates())
}

func TestConstantSelectFitFailure(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	failAll := map[int]bool{cfg.ConstantStates: true}

	s, err := NewConstant(ts, "GO", fakeFactory(flatScore(-1), failAll), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestBICPrefersLargerStateCountAtEqualLikelihood(t *testing.T) {
	// With equal logL everywhere the p*log(N) term grows with n, and the
	// selection rule keeps the maximum value, so the largest n wins.
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 6

	s, err := NewBIC(ts, "GO", fakeFactory(flatScore(-100), nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 5, m.NumStates())
}

func TestBICDeterministic(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 3)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 7

	scoreFn := func(n int, X [][]float64) (float64, error) {
		// An arbitrary but fixed likelihood profile over n.
		return -float64((n - 4) * (n - 4) * 50), nil
	}

	var picks []int
	for i := 0; i < 3; i++ {
		s, err := NewBIC(ts, "GO", fakeFactory(scoreFn, nil), cfg)
		require.NoError(t, err)
		m, err := s.Select()
		require.NoError(t, err)
		require.NotNil(t, m)
		picks = append(picks, m.NumStates())
	}
	assert.Equal(t, picks[0], picks[1])
	assert.Equal(t, picks[1], picks[2])
}

func TestBICSkipsFailingCandidates(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 6
	fail := map[int]bool{2: true, 4: true, 5: true}

	s, err := NewBIC(ts, "GO", fakeFactory(flatScore(-100), fail), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.NumStates())
}

func TestBICFallsBackToConstant(t *testing.T) {
	// Every candidate in range fails; the constant-state model built up
	// front survives as the fallback.
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	cfg.ConstantStates = 7
	cfg.MinStates, cfg.MaxStates = 2, 6
	fail := map[int]bool{2: true, 3: true, 4: true, 5: true}

	s, err := NewBIC(ts, "GO", fakeFactory(flatScore(-100), fail), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 7, m.NumStates())
}

func TestDICChoosesMostDiscriminative(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0, "BOOK": 1, "CHOCOLATE": 2}, 2)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 5

	// Evidence on own data (tag 0) is flat; anti-evidence dips at n=3,
	// making it the most discriminative state count.
	anti := map[int]float64{2: -1, 3: -20, 4: -4}
	scoreFn := func(n int, X [][]float64) (float64, error) {
		if X[0][0] == 0 {
			return -2, nil
		}
		return anti[n], nil
	}

	s, err := NewDIC(ts, "GO", fakeFactory(scoreFn, nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.NumStates())

	// The winner's DIC dominates every other candidate in range.
	bestDIC := -2.0 - anti[3]
	for n := 2; n < 5; n++ {
		assert.GreaterOrEqual(t, bestDIC, -2.0-anti[n])
	}
}

func TestDICWithNoOtherWordsFallsBack(t *testing.T) {
	// A single-word vocabulary has no anti-evidence; every candidate is
	// disqualified and the constant-state fallback wins.
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 5

	s, err := NewDIC(ts, "GO", fakeFactory(flatScore(-2), nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, cfg.ConstantStates, m.NumStates())
}

func TestCVFewSequencesUsesConstant(t *testing.T) {
	// Three sequences is not enough to fold (needs more than cvFolds).
	ts := trainingSet(map[string]float64{"GO": 0}, 3)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 5

	s, err := NewCV(ts, "GO", fakeFactory(flatScore(-3), nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, cfg.ConstantStates, m.NumStates())
}

func TestCVTieFavorsLargerStateCount(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 5)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 5

	scores := map[int]float64{2: -10, 3: -5, 4: -5}
	scoreFn := func(n int, X [][]float64) (float64, error) {
		return scores[n], nil
	}

	s, err := NewCV(ts, "GO", fakeFactory(scoreFn, nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 4, m.NumStates())
}

func TestCVRepresentativeModelIsLastFold(t *testing.T) {
	// Five sequences of lengths 1..5 split into folds [0 1] [2 3] [4];
	// the last fold trains on sequences 0..3, so the surviving model's
	// training lengths are 1..4.
	ts := trainingSet(map[string]float64{"GO": 0}, 5)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 3

	s, err := NewCV(ts, "GO", fakeFactory(flatScore(-1), nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
	fm, ok := m.(*fakeModel)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4}, fm.trainLens)
}

func TestCVFailureAbandonsSearch(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 5)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 5
	fail := map[int]bool{3: true}

	s, err := NewCV(ts, "GO", fakeFactory(flatScore(-1), fail), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestKFoldIndices(t *testing.T) {
	folds := kfoldIndices(5, 3)
	require.Len(t, folds, 3)
	assert.Equal(t, []int{0, 1}, folds[0])
	assert.Equal(t, []int{2, 3}, folds[1])
	assert.Equal(t, []int{4}, folds[2])

	assert.Equal(t, []int{0, 1, 2, 3}, complement(5, []int{4}))
	assert.Equal(t, []int{2, 3, 4}, complement(5, []int{0, 1}))
}

func TestNewByName(t *testing.T) {
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	factory := fakeFactory(flatScore(-1), nil)

	for _, name := range []string{"constant", "bic", "dic", "cv"} {
		s, err := New(name, ts, "GO", factory, cfg)
		require.NoError(t, err, name)
		require.NotNil(t, s, name)
	}

	_, err := New("aic", ts, "GO", factory, cfg)
	assert.Error(t, err)

	_, err = New("bic", ts, "MISSING", factory, cfg)
	assert.Error(t, err)
}

func TestBICNonFiniteLikelihoodStillYieldsModel(t *testing.T) {
	// Even a degenerate -inf likelihood must not crash the search or
	// leave the selector without a model.
	ts := trainingSet(map[string]float64{"GO": 0}, 2)
	cfg := DefaultConfig()
	cfg.MinStates, cfg.MaxStates = 2, 4

	scoreFn := func(n int, X [][]float64) (float64, error) {
		return math.Inf(-1), nil
	}
	s, err := NewBIC(ts, "GO", fakeFactory(scoreFn, nil), cfg)
	require.NoError(t, err)

	m, err := s.Select()
	require.NoError(t, err)
	require.NotNil(t, m)
}
