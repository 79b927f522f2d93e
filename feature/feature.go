// Package feature derives model-ready features from raw landmark
// coordinate sequences. All transforms are pure: they return a new
// sequence and leave the input untouched.
package feature

import (
	"fmt"
	"math"

	"github.com/signlab/signrec-go/internal/mathutil"
)

// Transform maps one frames x features sequence to another.
type Transform func([][]float64) [][]float64

// Normalize subtracts the sequence-level mean from each feature dimension.
// This removes signer position bias the way cepstral mean normalization
// removes channel bias in speech.
func Normalize(seq [][]float64) [][]float64 {
	T := len(seq)
	if T == 0 {
		return nil
	}
	mean, _ := mathutil.MeanVar(seq)
	dim := len(seq[0])
	out := newLike(T, dim)
	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			out[t][d] = seq[t][d] - mean[d]
		}
	}
	return out
}

// ZScore standardizes each feature dimension to zero mean and unit
// variance over the sequence. Dimensions with zero variance are left
// mean-centered.
func ZScore(seq [][]float64) [][]float64 {
	T := len(seq)
	if T == 0 {
		return nil
	}
	mean, variance := mathutil.MeanVar(seq)
	dim := len(seq[0])
	std := make([]float64, dim)
	for d := 0; d < dim; d++ {
		std[d] = math.Sqrt(variance[d])
	}
	out := newLike(T, dim)
	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			v := seq[t][d] - mean[d]
			if std[d] > 0 {
				v /= std[d]
			}
			out[t][d] = v
		}
	}
	return out
}

// Polar converts consecutive (x, y) column pairs to polar (radius, angle)
// pairs. The feature dimensionality must be even.
func Polar(seq [][]float64) [][]float64 {
	T := len(seq)
	if T == 0 {
		return nil
	}
	dim := len(seq[0])
	out := newLike(T, dim)
	for t := 0; t < T; t++ {
		for d := 0; d+1 < dim; d += 2 {
			x, y := seq[t][d], seq[t][d+1]
			out[t][d] = math.Sqrt(x*x + y*y)
			// atan2(x, y) keeps the discontinuity away from the common
			// straight-down hand resting position.
			out[t][d+1] = math.Atan2(x, y)
		}
	}
	return out
}

// delta computes first-derivative coefficients with regression window N.
// d[t] = sum_{n=1}^{N} n*(c[t+n] - c[t-n]) / (2 * sum_{n=1}^{N} n^2),
// with indices clamped at the sequence edges.
func delta(seq [][]float64, N int) [][]float64 {
	T := len(seq)
	dim := len(seq[0])
	out := newLike(T, dim)

	denom := 0.0
	for n := 1; n <= N; n++ {
		denom += float64(n * n)
	}
	denom *= 2.0

	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			num := 0.0
			for n := 1; n <= N; n++ {
				tp := t + n
				if tp >= T {
					tp = T - 1
				}
				tn := t - n
				if tn < 0 {
					tn = 0
				}
				num += float64(n) * (seq[tp][d] - seq[tn][d])
			}
			out[t][d] = num / denom
		}
	}
	return out
}

// Deltas appends first-derivative columns to each frame.
// Input: [T][D] -> Output: [T][2*D]
func Deltas(seq [][]float64) [][]float64 {
	T := len(seq)
	if T == 0 {
		return nil
	}
	dim := len(seq[0])
	d1 := delta(seq, 2)
	out := newLike(T, 2*dim)
	for t := 0; t < T; t++ {
		copy(out[t][:dim], seq[t])
		copy(out[t][dim:], d1[t])
	}
	return out
}

// Build composes named transforms in order. Known names: "normalize",
// "zscore", "polar", "deltas".
func Build(names []string) (Transform, error) {
	var chain []Transform
	for _, name := range names {
		switch name {
		case "normalize":
			chain = append(chain, Normalize)
		case "zscore":
			chain = append(chain, ZScore)
		case "polar":
			chain = append(chain, Polar)
		case "deltas":
			chain = append(chain, Deltas)
		default:
			return nil, fmt.Errorf("unknown feature transform %q", name)
		}
	}
	return func(seq [][]float64) [][]float64 {
		for _, fn := range chain {
			seq = fn(seq)
		}
		return seq
	}, nil
}

func newLike(rows, cols int) [][]float64 {
	return mathutil.NewMat(rows, cols)
}
