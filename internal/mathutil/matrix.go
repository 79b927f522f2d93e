package mathutil

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
// Rows share one backing slice for locality.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// NewMatFill creates a rows x cols matrix filled with val.
func NewMatFill(rows, cols int, val float64) Mat {
	m := NewMat(rows, cols)
	for i := range m {
		for j := range m[i] {
			m[i][j] = val
		}
	}
	return m
}

// FillMat fills all elements of an existing matrix with val.
func FillMat(m Mat, val float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] = val
		}
	}
}

// NewVecFill creates a vector of length n filled with val.
func NewVecFill(n int, val float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = val
	}
	return v
}

// FillVec fills all elements of an existing vector with val.
func FillVec(v []float64, val float64) {
	for i := range v {
		v[i] = val
	}
}

// MeanVar computes the per-column mean and (biased) variance of frames.
// Returns nil, nil for an empty input.
func MeanVar(frames Mat) (mean, variance []float64) {
	if len(frames) == 0 {
		return nil, nil
	}
	dim := len(frames[0])
	mean = make([]float64, dim)
	variance = make([]float64, dim)
	for _, f := range frames {
		for d := 0; d < dim; d++ {
			mean[d] += f[d]
		}
	}
	invT := 1.0 / float64(len(frames))
	for d := 0; d < dim; d++ {
		mean[d] *= invT
	}
	for _, f := range frames {
		for d := 0; d < dim; d++ {
			diff := f[d] - mean[d]
			variance[d] += diff * diff
		}
	}
	for d := 0; d < dim; d++ {
		variance[d] *= invT
	}
	return mean, variance
}
