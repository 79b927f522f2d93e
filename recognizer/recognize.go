// Package recognizer scores unlabeled test sequences against a set of
// per-word models and reports ranked guesses.
package recognizer

import (
	"math"
	"sort"

	"github.com/signlab/signrec-go/corpus"
)

// Scorer is the capability the recognizer needs from a trained model.
type Scorer interface {
	Score(X [][]float64, lengths []int) (float64, error)
}

// ScoreMap maps each candidate word to the log-likelihood of one test
// sequence under that word's model. Words whose model failed to score the
// sequence are simply absent.
type ScoreMap map[string]float64

// Recognize scores every test sequence against every model and returns,
// in test-set order, one ScoreMap per sequence and the best-guess word per
// sequence ("" when no model scored it). Nil models are skipped. Words are
// visited in sorted order so ties resolve deterministically to the
// alphabetically first word.
func Recognize(models map[string]Scorer, testSet *corpus.TestSet) ([]ScoreMap, []string) {
	words := make([]string, 0, len(models))
	for w := range models {
		words = append(words, w)
	}
	sort.Strings(words)

	items := testSet.Items()
	scoreMaps := make([]ScoreMap, 0, len(items))
	guesses := make([]string, 0, len(items))

	for _, item := range items {
		scores := make(ScoreMap)
		bestScore := math.Inf(-1)
		guess := ""

		for _, word := range words {
			m := models[word]
			if m == nil {
				continue
			}
			score, err := m.Score(item.X, item.Lengths)
			if err != nil {
				// This word simply does not participate for this sequence.
				continue
			}
			scores[word] = score
			if score > bestScore {
				bestScore = score
				guess = word
			}
		}

		scoreMaps = append(scoreMaps, scores)
		guesses = append(guesses, guess)
	}
	return scoreMaps, guesses
}
