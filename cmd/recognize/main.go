package main

import (
	"flag"
	"fmt"
	"os"

	signrec "github.com/signlab/signrec-go"
	"github.com/signlab/signrec-go/config"
	"github.com/signlab/signrec-go/corpus"
	"github.com/signlab/signrec-go/feature"
	"github.com/signlab/signrec-go/recognizer"
	"github.com/signlab/signrec-go/sequence"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	framesPath := flag.String("frames", "data/frames.csv", "landmark frames CSV")
	wordsPath := flag.String("words", "data/test_words.tsv", "test video-to-word TSV")
	modelsPath := flag.String("models", "data/models.bin", "trained model set path")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Paths.Frames != "" {
		*framesPath = cfg.Paths.Frames
	}
	if cfg.Paths.TestWords != "" {
		*wordsPath = cfg.Paths.TestWords
	}
	if cfg.Paths.Models != "" {
		*modelsPath = cfg.Paths.Models
	}

	models, err := sequence.LoadSetFile(*modelsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load models: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Models: %d words\n", len(models))

	dataset, err := corpus.LoadDataset(*framesPath, *wordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load dataset: %v\n", err)
		os.Exit(1)
	}

	transform, err := feature.Build(cfg.Features.Transforms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "features: %v\n", err)
		os.Exit(1)
	}
	dataset.Transform(transform)

	testSet := dataset.TestSet()
	scorers := make(map[string]recognizer.Scorer, len(models))
	for word, m := range models {
		scorers[word] = m
	}

	scoreMaps, guesses := recognizer.Recognize(scorers, testSet)

	for i, item := range testSet.Items() {
		guess := guesses[i]
		if guess == "" {
			guess = "-"
		}
		mark := " "
		if item.Word != "" && guesses[i] != item.Word {
			mark = "*"
		}
		score, ok := scoreMaps[i][guesses[i]]
		if ok {
			fmt.Printf("%s %6d  %-16s %-16s %12.2f\n", mark, item.ID, guess, item.Word, score)
		} else {
			fmt.Printf("%s %6d  %-16s %-16s %12s\n", mark, item.ID, guess, item.Word, "n/a")
		}
	}

	acc := signrec.Accuracy(guesses, testSet.TrueWords())
	fmt.Printf("Accuracy: %.2f%% (%d items)\n", acc*100, testSet.Len())
}
