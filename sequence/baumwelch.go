package sequence

import (
	"math"
	"math/rand"

	"github.com/signlab/signrec-go/internal/mathutil"
)

// Config holds Baum-Welch training parameters.
type Config struct {
	NumStates         int
	MaxIterations     int
	ConvergenceThresh float64 // log-likelihood improvement threshold
	MinVariance       float64 // variance floor
	Seed              int64   // seeds k-means initialization
}

// DefaultConfig returns reasonable default training parameters for the
// given state count and seed.
func DefaultConfig(numStates int, seed int64) Config {
	return Config{
		NumStates:         numStates,
		MaxIterations:     100,
		ConvergenceThresh: 0.01,
		MinVariance:       0.01,
		Seed:              seed,
	}
}

// Fit trains a diagonal-covariance Gaussian HMM on the combined observation
// array X, whose component sequences are described by lengths, using
// Baum-Welch (EM). Initialization is deterministic for a given seed.
// Returns a *FitError when the model cannot be trained: bad shapes, fewer
// frames than states, or vanishing likelihood.
func Fit(cfg Config, X [][]float64, lengths []int) (*Model, error) {
	n := cfg.NumStates
	if n < 1 {
		return nil, &FitError{NumStates: n, Reason: "state count must be positive"}
	}
	if err := checkSequences(X, lengths, 0); err != nil {
		return nil, &FitError{NumStates: n, Reason: err.Error()}
	}
	if len(X) < n {
		return nil, &FitError{NumStates: n, Reason: "fewer frames than states"}
	}
	dim := len(X[0])

	m := initialModel(cfg, X, dim)

	// Split the combined array into per-sequence views.
	seqs := make([][][]float64, len(lengths))
	offset := 0
	for i, l := range lengths {
		seqs[i] = X[offset : offset+l]
		offset += l
	}

	maxT := maxLength(lengths)

	// Pre-allocate workspaces (reused across iterations and sequences).
	alpha := mathutil.NewMat(maxT, n)
	beta := mathutil.NewMat(maxT, n)
	gamma := mathutil.NewMat(maxT, n)
	emit := mathutil.NewMat(maxT, n)

	// Accumulators: start and transition counts in log domain,
	// emission statistics in linear domain.
	startAcc := make([]float64, n)
	transAcc := mathutil.NewMat(n, n)
	occ := make([]float64, n)
	meanAcc := mathutil.NewMat(n, dim)
	varAcc := mathutil.NewMat(n, dim)

	prevLL := math.Inf(-1)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		mathutil.FillVec(startAcc, mathutil.LogZero)
		mathutil.FillMat(transAcc, mathutil.LogZero)
		mathutil.FillVec(occ, 0)
		mathutil.FillMat(meanAcc, 0)
		mathutil.FillMat(varAcc, 0)

		totalLL := 0.0
		validSeqs := 0

		for _, obs := range seqs {
			T := len(obs)

			// Emissions once per sequence.
			for t, o := range obs {
				for j := 0; j < n; j++ {
					emit[t][j] = m.States[j].LogProb(o)
				}
			}

			m.forward(obs, alpha[:T])
			m.backward(obs, beta[:T])

			ll := mathutil.LogSumVec(alpha[T-1])
			if ll <= mathutil.LogZero+1 || math.IsNaN(ll) {
				continue
			}
			totalLL += ll
			validSeqs++

			// gamma[t][j] = log P(q_t=j | O, model)
			for t := 0; t < T; t++ {
				for j := 0; j < n; j++ {
					gamma[t][j] = alpha[t][j] + beta[t][j] - ll
				}
			}

			// Initial-state counts.
			for j := 0; j < n; j++ {
				startAcc[j] = mathutil.LogAdd(startAcc[j], gamma[0][j])
			}

			// Transition counts.
			for t := 0; t < T-1; t++ {
				for i := 0; i < n; i++ {
					if alpha[t][i] <= mathutil.LogZero+1 {
						continue
					}
					for j := 0; j < n; j++ {
						if m.TransLog[i][j] <= mathutil.LogZero+1 {
							continue
						}
						xi := alpha[t][i] + m.TransLog[i][j] + emit[t+1][j] + beta[t+1][j] - ll
						transAcc[i][j] = mathutil.LogAdd(transAcc[i][j], xi)
					}
				}
			}

			// Emission statistics.
			for t := 0; t < T; t++ {
				ot := obs[t]
				for j := 0; j < n; j++ {
					if gamma[t][j] <= mathutil.LogZero+1 {
						continue
					}
					post := math.Exp(gamma[t][j])
					occ[j] += post
					meanRow := meanAcc[j]
					varRow := varAcc[j]
					for d := 0; d < dim; d++ {
						xd := ot[d]
						scaled := post * xd
						meanRow[d] += scaled
						varRow[d] += scaled * xd
					}
				}
			}
		}

		if validSeqs == 0 || math.IsNaN(totalLL) {
			return nil, &FitError{NumStates: n, Reason: "likelihood vanished during training"}
		}

		// Check convergence.
		if iter > 0 && totalLL-prevLL < cfg.ConvergenceThresh {
			break
		}
		prevLL = totalLL

		// Re-estimate initial-state probabilities.
		startDenom := mathutil.LogSumVec(startAcc)
		if startDenom > mathutil.LogZero+1 {
			for j := 0; j < n; j++ {
				m.StartLog[j] = startAcc[j] - startDenom
			}
		}

		// Re-estimate transition probabilities.
		for i := 0; i < n; i++ {
			denom := mathutil.LogSumVec(transAcc[i])
			if denom <= mathutil.LogZero+1 {
				continue
			}
			for j := 0; j < n; j++ {
				if transAcc[i][j] > mathutil.LogZero+1 {
					m.TransLog[i][j] = transAcc[i][j] - denom
				} else {
					m.TransLog[i][j] = mathutil.LogZero
				}
			}
		}

		// Re-estimate emission parameters.
		for j := 0; j < n; j++ {
			if occ[j] < 1e-10 {
				continue
			}
			g := &m.States[j]
			for d := 0; d < dim; d++ {
				g.Mean[d] = meanAcc[j][d] / occ[j]
				v := varAcc[j][d]/occ[j] - g.Mean[d]*g.Mean[d]
				if v < cfg.MinVariance {
					v = cfg.MinVariance
				}
				g.Variance[d] = v
			}
			g.Precompute()
		}
	}

	return m, nil
}

// initialModel builds the starting point for EM: uniform start and
// transition probabilities, k-means cluster centers as emission means,
// and the global variance as every state's variance.
func initialModel(cfg Config, frames [][]float64, dim int) *Model {
	n := cfg.NumStates
	rng := rand.New(rand.NewSource(cfg.Seed))

	logUniform := -math.Log(float64(n))
	m := &Model{
		StartLog: mathutil.NewVecFill(n, logUniform),
		TransLog: mathutil.NewMatFill(n, n, logUniform),
		States:   make([]Gaussian, n),
		Dim:      dim,
	}

	_, variance := mathutil.MeanVar(frames)
	for d := 0; d < dim; d++ {
		if variance[d] < cfg.MinVariance {
			variance[d] = cfg.MinVariance
		}
	}

	means := kmeans(rng, frames, n)
	for j := 0; j < n; j++ {
		g := Gaussian{
			Mean:     means[j],
			Variance: make([]float64, dim),
		}
		copy(g.Variance, variance)
		g.Precompute()
		m.States[j] = g
	}
	return m
}

// kmeans runs a few Lloyd iterations over frames with k seeded centers.
// Empty clusters are re-seeded from a random frame.
func kmeans(rng *rand.Rand, frames [][]float64, k int) [][]float64 {
	dim := len(frames[0])
	centers := mathutil.NewMat(k, dim)
	for j, idx := range rng.Perm(len(frames))[:k] {
		copy(centers[j], frames[idx])
	}

	assign := make([]int, len(frames))
	counts := make([]int, k)
	sums := mathutil.NewMat(k, dim)

	for iter := 0; iter < 10; iter++ {
		changed := false
		for i, f := range frames {
			best, bestDist := 0, math.Inf(1)
			for j := 0; j < k; j++ {
				dist := 0.0
				for d := 0; d < dim; d++ {
					diff := f[d] - centers[j][d]
					dist += diff * diff
				}
				if dist < bestDist {
					best, bestDist = j, dist
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		for j := 0; j < k; j++ {
			counts[j] = 0
		}
		mathutil.FillMat(sums, 0)
		for i, f := range frames {
			j := assign[i]
			counts[j]++
			for d := 0; d < dim; d++ {
				sums[j][d] += f[d]
			}
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				copy(centers[j], frames[rng.Intn(len(frames))])
				continue
			}
			for d := 0; d < dim; d++ {
				centers[j][d] = sums[j][d] / float64(counts[j])
			}
		}
	}
	return centers
}
