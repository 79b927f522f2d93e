package sequence

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// serializable types for gob encoding
type serializedModel struct {
	StartLog  []float64
	TransLog  [][]float64
	Means     [][]float64
	Variances [][]float64
	Dim       int
}

type serializedSet struct {
	Models map[string]serializedModel
}

// SaveSet serializes a word-to-model mapping to w as zstd-compressed gob.
// Words whose model is nil (selection exhausted) are skipped.
func SaveSet(w io.Writer, models map[string]*Model) error {
	set := serializedSet{Models: make(map[string]serializedModel)}
	for word, m := range models {
		if m == nil {
			continue
		}
		sm := serializedModel{
			StartLog: m.StartLog,
			TransLog: m.TransLog,
			Dim:      m.Dim,
		}
		for _, g := range m.States {
			sm.Means = append(sm.Means, g.Mean)
			sm.Variances = append(sm.Variances, g.Variance)
		}
		set.Models[word] = sm
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(set); err != nil {
		zw.Close()
		return fmt.Errorf("encode model set: %w", err)
	}
	return zw.Close()
}

// LoadSet deserializes a word-to-model mapping from r.
func LoadSet(r io.Reader) (map[string]*Model, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var set serializedSet
	if err := gob.NewDecoder(zr).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode model set: %w", err)
	}

	models := make(map[string]*Model, len(set.Models))
	for word, sm := range set.Models {
		m := &Model{
			StartLog: sm.StartLog,
			TransLog: sm.TransLog,
			States:   make([]Gaussian, len(sm.Means)),
			Dim:      sm.Dim,
		}
		for i := range sm.Means {
			m.States[i] = Gaussian{Mean: sm.Means[i], Variance: sm.Variances[i]}
			m.States[i].Precompute()
		}
		models[word] = m
	}
	return models, nil
}

// SaveSetFile is a convenience wrapper that writes to a file path.
func SaveSetFile(path string, models map[string]*Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := SaveSet(f, models); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSetFile is a convenience wrapper that reads from a file path.
func LoadSetFile(path string) (map[string]*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	return LoadSet(f)
}
