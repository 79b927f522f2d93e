package sequence

import (
	"fmt"
	"math"

	"github.com/signlab/signrec-go/internal/mathutil"
)

// Model is a fitted hidden Markov model with one diagonal-covariance
// Gaussian emission per state. All probabilities are kept in log domain.
// All states are emitting and any state may start or follow any other.
type Model struct {
	StartLog []float64   // [N] log initial-state probabilities
	TransLog [][]float64 // [N][N] log transition probabilities
	States   []Gaussian  // [N] emission densities
	Dim      int         // observation dimensionality
}

// NumStates returns the number of hidden states.
func (m *Model) NumStates() int {
	return len(m.States)
}

// Score computes the total log-likelihood of the concatenated observations
// under the model via the forward algorithm, summed over the component
// sequences described by lengths.
func (m *Model) Score(X [][]float64, lengths []int) (float64, error) {
	if err := checkSequences(X, lengths, m.Dim); err != nil {
		return 0, &ScoreError{Reason: err.Error()}
	}
	alpha := mathutil.NewMat(maxLength(lengths), m.NumStates())

	total := 0.0
	offset := 0
	for _, l := range lengths {
		obs := X[offset : offset+l]
		offset += l

		m.forward(obs, alpha[:l])
		ll := mathutil.LogSumVec(alpha[l-1])
		if ll <= mathutil.LogZero+1 || math.IsNaN(ll) {
			return 0, &ScoreError{Reason: "sequence has vanishing likelihood under model"}
		}
		total += ll
	}
	return total, nil
}

// forward computes the forward variable alpha[t][j] = log P(o_1..o_t, q_t=j)
// into the pre-allocated alpha, which must have len(obs) rows.
func (m *Model) forward(obs [][]float64, alpha [][]float64) {
	n := m.NumStates()
	for j := 0; j < n; j++ {
		alpha[0][j] = m.StartLog[j] + m.States[j].LogProb(obs[0])
	}
	for t := 1; t < len(obs); t++ {
		for j := 0; j < n; j++ {
			logSum := mathutil.LogZero
			for i := 0; i < n; i++ {
				if alpha[t-1][i] > mathutil.LogZero+1 && m.TransLog[i][j] > mathutil.LogZero+1 {
					logSum = mathutil.LogAdd(logSum, alpha[t-1][i]+m.TransLog[i][j])
				}
			}
			if logSum > mathutil.LogZero+1 {
				alpha[t][j] = logSum + m.States[j].LogProb(obs[t])
			} else {
				alpha[t][j] = mathutil.LogZero
			}
		}
	}
}

// backward computes the backward variable beta[t][i] = log P(o_{t+1}..o_T | q_t=i)
// into the pre-allocated beta, which must have len(obs) rows.
func (m *Model) backward(obs [][]float64, beta [][]float64) {
	n := m.NumStates()
	T := len(obs)
	for i := 0; i < n; i++ {
		beta[T-1][i] = 0.0 // log(1)
	}
	for t := T - 2; t >= 0; t-- {
		for i := 0; i < n; i++ {
			logSum := mathutil.LogZero
			for j := 0; j < n; j++ {
				if m.TransLog[i][j] > mathutil.LogZero+1 && beta[t+1][j] > mathutil.LogZero+1 {
					logSum = mathutil.LogAdd(logSum,
						m.TransLog[i][j]+m.States[j].LogProb(obs[t+1])+beta[t+1][j])
				}
			}
			beta[t][i] = logSum
		}
	}
}

// checkSequences validates the combined (X, lengths) pair: lengths must be
// positive and sum to the row count, and every row must have the same
// dimensionality (equal to dim when dim > 0).
func checkSequences(X [][]float64, lengths []int, dim int) error {
	if len(lengths) == 0 {
		return fmt.Errorf("no sequences")
	}
	total := 0
	for _, l := range lengths {
		if l <= 0 {
			return fmt.Errorf("non-positive sequence length %d", l)
		}
		total += l
	}
	if total != len(X) {
		return fmt.Errorf("lengths sum to %d but observations have %d rows", total, len(X))
	}
	if dim <= 0 && len(X) > 0 {
		dim = len(X[0])
	}
	for i, row := range X {
		if len(row) != dim {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), dim)
		}
	}
	return nil
}

func maxLength(lengths []int) int {
	max := 0
	for _, l := range lengths {
		if l > max {
			max = l
		}
	}
	return max
}
