package sequence

import (
	"strconv"

	"github.com/signlab/signrec-go/internal/mathutil"
)

// Decode returns the most likely hidden-state path for one observation
// sequence and the path's log probability (Viterbi).
func (m *Model) Decode(obs [][]float64) ([]int, float64, error) {
	if len(obs) == 0 {
		return nil, 0, &ScoreError{Reason: "empty sequence"}
	}
	for i, row := range obs {
		if len(row) != m.Dim {
			return nil, 0, &ScoreError{Reason: "dimensionality mismatch at frame " + strconv.Itoa(i)}
		}
	}

	n := m.NumStates()
	T := len(obs)
	delta := mathutil.NewMat(T, n)
	backptr := make([][]int, T)
	for t := range backptr {
		backptr[t] = make([]int, n)
	}

	for j := 0; j < n; j++ {
		delta[0][j] = m.StartLog[j] + m.States[j].LogProb(obs[0])
	}

	for t := 1; t < T; t++ {
		for j := 0; j < n; j++ {
			bestScore := mathutil.LogZero
			bestPrev := 0
			for i := 0; i < n; i++ {
				s := delta[t-1][i] + m.TransLog[i][j]
				if s > bestScore {
					bestScore = s
					bestPrev = i
				}
			}
			delta[t][j] = bestScore + m.States[j].LogProb(obs[t])
			backptr[t][j] = bestPrev
		}
	}

	bestLast := 0
	bestLL := delta[T-1][0]
	for j := 1; j < n; j++ {
		if delta[T-1][j] > bestLL {
			bestLL = delta[T-1][j]
			bestLast = j
		}
	}
	if bestLL <= mathutil.LogZero+1 {
		return nil, 0, &ScoreError{Reason: "sequence has vanishing likelihood under model"}
	}

	path := make([]int, T)
	path[T-1] = bestLast
	for t := T - 1; t > 0; t-- {
		path[t-1] = backptr[t][path[t]]
	}
	return path, bestLL, nil
}
