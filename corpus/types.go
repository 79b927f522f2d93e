package corpus

import "sort"

// Combined is a single concatenated observation array plus the list of
// component sequence lengths. This is the exact input format required by
// model fitting and scoring.
type Combined struct {
	X       [][]float64
	Lengths []int
}

// SequenceSet holds one word's training sequences in insertion order.
// Each sequence is a frames x features array.
type SequenceSet struct {
	Sequences [][][]float64
}

// Len returns the number of sequences.
func (s *SequenceSet) Len() int {
	return len(s.Sequences)
}

// Add appends a sequence.
func (s *SequenceSet) Add(seq [][]float64) {
	s.Sequences = append(s.Sequences, seq)
}

// Combine concatenates every sequence in the set.
func (s *SequenceSet) Combine() Combined {
	indices := make([]int, len(s.Sequences))
	for i := range indices {
		indices[i] = i
	}
	return CombineIndices(indices, s.Sequences)
}

// CombineIndices concatenates the sequences selected by indices into one
// observation array with a parallel list of lengths.
func CombineIndices(indices []int, seqs [][][]float64) Combined {
	var c Combined
	for _, idx := range indices {
		c.X = append(c.X, seqs[idx]...)
		c.Lengths = append(c.Lengths, len(seqs[idx]))
	}
	return c
}

// TrainingSet maps vocabulary words to their training sequences.
type TrainingSet struct {
	sets map[string]*SequenceSet
}

// NewTrainingSet creates an empty training set.
func NewTrainingSet() *TrainingSet {
	return &TrainingSet{sets: make(map[string]*SequenceSet)}
}

// Add appends a sequence to the given word.
func (ts *TrainingSet) Add(word string, seq [][]float64) {
	set, ok := ts.sets[word]
	if !ok {
		set = &SequenceSet{}
		ts.sets[word] = set
	}
	set.Add(seq)
}

// Words returns the vocabulary in sorted order.
func (ts *TrainingSet) Words() []string {
	words := make([]string, 0, len(ts.sets))
	for w := range ts.sets {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Sequences returns the sequence set for a word, or nil if absent.
func (ts *TrainingSet) Sequences(word string) *SequenceSet {
	return ts.sets[word]
}

// Combined returns the concatenated training data for a word.
func (ts *TrainingSet) Combined(word string) (Combined, bool) {
	set, ok := ts.sets[word]
	if !ok {
		return Combined{}, false
	}
	return set.Combine(), true
}

// TestItem is one unlabeled (or held-out labeled) test sequence.
type TestItem struct {
	ID   int
	Word string // true label when known, "" otherwise
	Combined
}

// TestSet is an ordered collection of test sequences. Iteration order is
// insertion order, which fixes the ordering of recognition output.
type TestSet struct {
	items []TestItem
}

// NewTestSet creates an empty test set.
func NewTestSet() *TestSet {
	return &TestSet{}
}

// Add appends a test sequence.
func (ts *TestSet) Add(id int, word string, seq [][]float64) {
	ts.items = append(ts.items, TestItem{
		ID:       id,
		Word:     word,
		Combined: CombineIndices([]int{0}, [][][]float64{seq}),
	})
}

// Items returns the test sequences in insertion order.
func (ts *TestSet) Items() []TestItem {
	return ts.items
}

// Len returns the number of test sequences.
func (ts *TestSet) Len() int {
	return len(ts.items)
}

// TrueWords returns the true labels in item order ("" where unknown).
func (ts *TestSet) TrueWords() []string {
	words := make([]string, len(ts.items))
	for i, it := range ts.items {
		words[i] = it.Word
	}
	return words
}
