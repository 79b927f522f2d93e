package sequence

import "math"

// Gaussian is a multivariate Gaussian emission density with diagonal covariance.
type Gaussian struct {
	Mean     []float64 // [dim]
	Variance []float64 // [dim] diagonal covariance

	// Pre-computed values
	logNormConst float64
	invVariance  []float64 // [dim] 1/Variance, precomputed to avoid division in hot loop
}

// Precompute recalculates cached normalization constants and inverse variances.
// Must be called after updating Mean or Variance.
func (g *Gaussian) Precompute() {
	dim := len(g.Mean)
	g.logNormConst = float64(dim)/2.0*math.Log(2*math.Pi) + 0.5*sumLog(g.Variance)
	g.invVariance = make([]float64, dim)
	for i := range g.Variance {
		g.invVariance[i] = 1.0 / g.Variance[i]
	}
}

// LogProb computes the log probability of observation x under this Gaussian.
func (g *Gaussian) LogProb(x []float64) float64 {
	maha := 0.0
	for d := range x {
		diff := x[d] - g.Mean[d]
		maha += diff * diff * g.invVariance[d]
	}
	return -0.5*maha - g.logNormConst
}

func sumLog(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += math.Log(x)
	}
	return s
}
