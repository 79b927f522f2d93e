package corpus

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Dataset holds raw landmark sequences keyed by video id along with the
// word label of each video.
type Dataset struct {
	Columns []string // feature column names in file order
	videos  []int    // sorted video ids
	frames  map[int][][]float64
	words   map[int]string
}

// LoadDataset reads landmark frames and word labels from files.
// The frames file is a CSV with header "video,frame,<feature columns...>";
// rows may appear in any order and are sorted by frame within each video.
// The words file is tab-separated: video<TAB>word.
func LoadDataset(framesPath, wordsPath string) (*Dataset, error) {
	ff, err := os.Open(framesPath)
	if err != nil {
		return nil, fmt.Errorf("open frames: %w", err)
	}
	defer ff.Close()

	d, err := loadFrames(ff)
	if err != nil {
		return nil, fmt.Errorf("frames %s: %w", framesPath, err)
	}

	wf, err := os.Open(wordsPath)
	if err != nil {
		return nil, fmt.Errorf("open words: %w", err)
	}
	defer wf.Close()

	if err := d.loadWords(wf); err != nil {
		return nil, fmt.Errorf("words %s: %w", wordsPath, err)
	}
	return d, nil
}

type frameRow struct {
	frame int
	feats []float64
}

func loadFrames(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 3 || header[0] != "video" || header[1] != "frame" {
		return nil, fmt.Errorf("header must start with video,frame")
	}

	d := &Dataset{
		Columns: header[2:],
		frames:  make(map[int][][]float64),
		words:   make(map[int]string),
	}

	rows := make(map[int][]frameRow)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		video, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad video id %q", line, rec[0])
		}
		frame, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad frame %q", line, rec[1])
		}
		feats := make([]float64, len(rec)-2)
		for i, v := range rec[2:] {
			feats[i], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad value %q in column %s", line, v, d.Columns[i])
			}
		}
		rows[video] = append(rows[video], frameRow{frame: frame, feats: feats})
	}

	for video, vr := range rows {
		sort.Slice(vr, func(i, j int) bool { return vr[i].frame < vr[j].frame })
		seq := make([][]float64, len(vr))
		for i, fr := range vr {
			seq[i] = fr.feats
		}
		d.frames[video] = seq
		d.videos = append(d.videos, video)
	}
	sort.Ints(d.videos)
	return d, nil
}

// loadWords reads the video-to-word mapping. Lines starting with # and
// blank lines are skipped.
func (d *Dataset) loadWords(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: expected video<TAB>word", lineNum)
		}
		video, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("line %d: bad video id %q", lineNum, parts[0])
		}
		d.words[video] = strings.TrimSpace(parts[1])
	}
	return scanner.Err()
}

// Videos returns the video ids in ascending order.
func (d *Dataset) Videos() []int {
	return d.videos
}

// Word returns the label of a video, "" if unlabeled.
func (d *Dataset) Word(video int) string {
	return d.words[video]
}

// Frames returns the raw frame sequence of a video.
func (d *Dataset) Frames(video int) [][]float64 {
	return d.frames[video]
}

// Transform replaces every video's sequence with fn(sequence). Used to
// apply feature derivation before building training or test sets.
func (d *Dataset) Transform(fn func([][]float64) [][]float64) {
	for video, seq := range d.frames {
		d.frames[video] = fn(seq)
	}
}

// TrainingSet groups the dataset's sequences by word. Videos without a
// label are skipped.
func (d *Dataset) TrainingSet() *TrainingSet {
	ts := NewTrainingSet()
	for _, video := range d.videos {
		word, ok := d.words[video]
		if !ok {
			continue
		}
		ts.Add(word, d.frames[video])
	}
	return ts
}

// TestSet builds an ordered test set, one item per video in ascending
// video-id order. Labels, when present, are carried as the true words.
func (d *Dataset) TestSet() *TestSet {
	ts := NewTestSet()
	for _, video := range d.videos {
		ts.Add(video, d.words[video], d.frames[video])
	}
	return ts
}
