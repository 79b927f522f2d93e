package main

import (
	"flag"
	"fmt"
	"os"

	signrec "github.com/signlab/signrec-go"
	"github.com/signlab/signrec-go/config"
	"github.com/signlab/signrec-go/corpus"
	"github.com/signlab/signrec-go/feature"
	"github.com/signlab/signrec-go/selector"
	"github.com/signlab/signrec-go/sequence"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	framesPath := flag.String("frames", "data/frames.csv", "landmark frames CSV")
	wordsPath := flag.String("words", "data/train_words.tsv", "training video-to-word TSV")
	strategy := flag.String("strategy", "", "selection strategy override (constant, bic, dic, cv)")
	output := flag.String("output", "data/models.bin", "output model set path")
	verbose := flag.Bool("v", false, "per-candidate selection diagnostics")
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
	if *strategy != "" {
		cfg.Selection.Strategy = *strategy
	}
	if cfg.Paths.Frames != "" {
		*framesPath = cfg.Paths.Frames
	}
	if cfg.Paths.TrainWords != "" {
		*wordsPath = cfg.Paths.TrainWords
	}
	if cfg.Paths.Models != "" {
		*output = cfg.Paths.Models
	}

	dataset, err := corpus.LoadDataset(*framesPath, *wordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Videos: %d, feature columns: %d\n", len(dataset.Videos()), len(dataset.Columns))

	transform, err := feature.Build(cfg.Features.Transforms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "features: %v\n", err)
		os.Exit(1)
	}
	dataset.Transform(transform)

	trainSet := dataset.TrainingSet()
	fmt.Fprintf(os.Stderr, "Vocabulary: %d words, strategy: %s\n", len(trainSet.Words()), cfg.Selection.Strategy)

	pipeline := signrec.New(
		signrec.WithStrategy(cfg.Selection.Strategy),
		signrec.WithSelection(selector.Config{
			ConstantStates: cfg.Selection.ConstantStates,
			MinStates:      cfg.Selection.MinStates,
			MaxStates:      cfg.Selection.MaxStates,
			Seed:           cfg.Selection.Seed,
			Verbose:        cfg.Selection.Verbose || *verbose,
		}),
		signrec.WithTraining(sequence.Config{
			MaxIterations:     cfg.Training.MaxIterations,
			ConvergenceThresh: cfg.Training.ConvergenceThresh,
			MinVariance:       cfg.Training.MinVariance,
		}),
	)

	models, err := pipeline.TrainAll(trainSet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}

	trained := signrec.SequenceModels(models)
	for _, word := range trainSet.Words() {
		if _, ok := trained[word]; !ok {
			fmt.Fprintf(os.Stderr, "  no usable model for %s\n", word)
		}
	}
	fmt.Fprintf(os.Stderr, "Trained models: %d/%d\n", len(trained), len(trainSet.Words()))

	if err := sequence.SaveSetFile(*output, trained); err != nil {
		fmt.Fprintf(os.Stderr, "save models: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", *output)
}
