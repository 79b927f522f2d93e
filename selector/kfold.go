package selector

// kfoldIndices splits the indices 0..n-1 into k contiguous folds. The
// first n%k folds carry one extra index, matching the usual unshuffled
// k-fold layout. Assumes n >= k.
func kfoldIndices(n, k int) [][]int {
	folds := make([][]int, k)
	size := n / k
	extra := n % k
	start := 0
	for f := 0; f < k; f++ {
		end := start + size
		if f < extra {
			end++
		}
		fold := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			fold = append(fold, i)
		}
		folds[f] = fold
		start = end
	}
	return folds
}

// complement returns the indices 0..n-1 not present in exclude, in order.
// exclude must be sorted ascending.
func complement(n int, exclude []int) []int {
	out := make([]int, 0, n-len(exclude))
	e := 0
	for i := 0; i < n; i++ {
		if e < len(exclude) && exclude[e] == i {
			e++
			continue
		}
		out = append(out, i)
	}
	return out
}
