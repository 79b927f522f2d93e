package sequence

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/signlab/signrec-go/internal/mathutil"
)

// syntheticData builds sequences that alternate between two well-separated
// regimes, combined into the (X, lengths) layout used by Fit and Score.
func syntheticData(rng *rand.Rand, numSeqs, half int) ([][]float64, []int) {
	var X [][]float64
	var lengths []int
	for s := 0; s < numSeqs; s++ {
		for t := 0; t < 2*half; t++ {
			center := 0.0
			if t >= half {
				center = 5.0
			}
			X = append(X, []float64{
				center + rng.NormFloat64()*0.5,
				center + rng.NormFloat64()*0.5,
			})
		}
		lengths = append(lengths, 2*half)
	}
	return X, lengths
}

func TestFitAndScore(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	X, lengths := syntheticData(rng, 20, 4)

	m, err := Fit(DefaultConfig(2, 14), X, lengths)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	if m.NumStates() != 2 {
		t.Errorf("NumStates = %d, want 2", m.NumStates())
	}
	if m.Dim != 2 {
		t.Errorf("Dim = %d, want 2", m.Dim)
	}

	ll, err := m.Score(X, lengths)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		t.Fatalf("Score = %f (not finite)", ll)
	}

	// The fitted means should land near the two regime centers.
	foundLow, foundHigh := false, false
	for _, g := range m.States {
		if math.Abs(g.Mean[0]) < 1.0 {
			foundLow = true
		}
		if math.Abs(g.Mean[0]-5.0) < 1.0 {
			foundHigh = true
		}
	}
	if !foundLow || !foundHigh {
		t.Errorf("state means %v do not cover regime centers 0 and 5",
			[]float64{m.States[0].Mean[0], m.States[1].Mean[0]})
	}
}

func TestFitDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	X, lengths := syntheticData(rng, 10, 3)

	m1, err := Fit(DefaultConfig(3, 14), X, lengths)
	if err != nil {
		t.Fatalf("first Fit error: %v", err)
	}
	m2, err := Fit(DefaultConfig(3, 14), X, lengths)
	if err != nil {
		t.Fatalf("second Fit error: %v", err)
	}

	ll1, err := m1.Score(X, lengths)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	ll2, err := m2.Score(X, lengths)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if math.Abs(ll1-ll2) > 1e-9 {
		t.Errorf("same seed, different likelihoods: %f vs %f", ll1, ll2)
	}
}

func TestFitImprovesOverInit(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	X, lengths := syntheticData(rng, 15, 4)

	cfg := DefaultConfig(2, 14)
	init := initialModel(cfg, X, 2)
	initLL, err := init.Score(X, lengths)
	if err != nil {
		t.Fatalf("initial Score error: %v", err)
	}

	m, err := Fit(cfg, X, lengths)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	fitLL, err := m.Score(X, lengths)
	if err != nil {
		t.Fatalf("fitted Score error: %v", err)
	}
	if fitLL < initLL {
		t.Errorf("training decreased likelihood: %f -> %f", initLL, fitLL)
	}
}

func TestFitErrors(t *testing.T) {
	var fitErr *FitError

	// Fewer frames than states.
	X := [][]float64{{0.0}, {1.0}}
	if _, err := Fit(DefaultConfig(5, 14), X, []int{2}); !errors.As(err, &fitErr) {
		t.Errorf("too few frames: err = %v, want *FitError", err)
	}

	// Lengths not summing to row count.
	if _, err := Fit(DefaultConfig(1, 14), X, []int{3}); !errors.As(err, &fitErr) {
		t.Errorf("bad lengths: err = %v, want *FitError", err)
	}

	// No sequences at all.
	if _, err := Fit(DefaultConfig(1, 14), nil, nil); !errors.As(err, &fitErr) {
		t.Errorf("empty input: err = %v, want *FitError", err)
	}
}

func TestScoreDimensionMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	X, lengths := syntheticData(rng, 8, 3)
	m, err := Fit(DefaultConfig(2, 14), X, lengths)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	var scoreErr *ScoreError
	_, err = m.Score([][]float64{{1.0}, {2.0}}, []int{2})
	if !errors.As(err, &scoreErr) {
		t.Errorf("dim mismatch: err = %v, want *ScoreError", err)
	}
}

func TestDecode(t *testing.T) {
	// Hand-built two-state model: state 0 emits around 0, state 1 around 5,
	// sticky transitions, always starts in state 0.
	m := &Model{
		StartLog: []float64{0.0, mathutil.LogZero},
		TransLog: [][]float64{
			{math.Log(0.9), math.Log(0.1)},
			{math.Log(0.1), math.Log(0.9)},
		},
		States: []Gaussian{
			{Mean: []float64{0.0}, Variance: []float64{1.0}},
			{Mean: []float64{5.0}, Variance: []float64{1.0}},
		},
		Dim: 1,
	}
	for i := range m.States {
		m.States[i].Precompute()
	}

	obs := [][]float64{{0.1}, {-0.2}, {4.9}, {5.2}}
	path, ll, err := m.Decode(obs)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := []int{0, 0, 1, 1}
	for i, s := range want {
		if path[i] != s {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
	if math.IsNaN(ll) || ll <= mathutil.LogZero+1 {
		t.Errorf("Decode ll = %f (not finite)", ll)
	}

	if _, _, err := m.Decode(nil); err == nil {
		t.Error("Decode(nil) should fail")
	}
}

func TestSaveLoadSet(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	X, lengths := syntheticData(rng, 10, 3)
	m, err := Fit(DefaultConfig(2, 14), X, lengths)
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}

	var buf bytes.Buffer
	models := map[string]*Model{"CHOCOLATE": m, "BROKEN": nil}
	if err := SaveSet(&buf, models); err != nil {
		t.Fatalf("SaveSet error: %v", err)
	}

	loaded, err := LoadSet(&buf)
	if err != nil {
		t.Fatalf("LoadSet error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d models, want 1 (nil entries skipped)", len(loaded))
	}

	orig, _ := m.Score(X, lengths)
	restored, err := loaded["CHOCOLATE"].Score(X, lengths)
	if err != nil {
		t.Fatalf("restored Score error: %v", err)
	}
	if math.Abs(orig-restored) > 1e-9 {
		t.Errorf("restored model scores %f, want %f", restored, orig)
	}
}
