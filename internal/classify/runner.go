package classify

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

const outputPrefix = "relacionamentos_toxicos_"

// Recorder persists accepted results as they are produced.
type Recorder interface {
	Record(r Result) error
}

type RunnerConfig struct {
	// ResultsDir receives the partial and final files. It is created if
	// missing.
	ResultsDir string

	// CheckpointEvery overrides the profile's checkpoint interval when
	// positive.
	CheckpointEvery int

	// Out receives the progress lines. Defaults to io.Discard.
	Out io.Writer

	Recorder Recorder
	Logger   *zap.Logger

	// Now stamps the final file names. Defaults to time.Now.
	Now func() time.Time
}

// Runner classifies a batch of songs one at a time.
type Runner struct {
	classifier *Classifier
	cfg        RunnerConfig
	logger     *zap.Logger
}

// Report describes a finished batch.
type Report struct {
	Results []Result
	// Processed counts every song visited, including skipped ones.
	Processed   int
	Skipped     int
	Checkpoints []string
	CSVPath     string
	JSONPath    string
}

func NewRunner(c *Classifier, cfg RunnerConfig) *Runner {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{classifier: c, cfg: cfg, logger: logger}
}

func (r *Runner) checkpointEvery() int {
	if r.cfg.CheckpointEvery > 0 {
		return r.cfg.CheckpointEvery
	}
	return r.classifier.Profile().CheckpointEvery
}

// Run classifies songs in order. A song that exhausts its attempts is
// skipped and the batch continues. Every checkpointEvery processed songs the
// results so far are written to parcial_<n>.csv; at the end they are written
// to timestamped CSV and JSON files. If the context is cancelled, Run returns
// the report so far together with the context error. The report is never
// nil.
func (r *Runner) Run(ctx context.Context, songs []dataset.Song) (*Report, error) {
	report := &Report{}
	if err := os.MkdirAll(r.cfg.ResultsDir, 0755); err != nil {
		return report, fmt.Errorf("creating results directory: %w", err)
	}

	profile := r.classifier.Profile()
	every := r.checkpointEvery()
	total := len(songs)

	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fmt.Fprintf(r.cfg.Out, "Analisando %d/%d - %s\n", i+1, total, song.Title)

		if !song.HasLyrics() {
			r.logger.Info("skipping song without lyrics", zap.Int("index", song.Index), zap.String("title", song.Title))
			report.Skipped++
		} else {
			result, err := r.classifier.Classify(ctx, song)
			switch {
			case err != nil && ctx.Err() != nil:
				return report, ctx.Err()
			case err != nil:
				r.logger.Warn("skipping song", zap.Int("index", song.Index), zap.Error(err))
				report.Skipped++
			default:
				report.Results = append(report.Results, *result)
				r.logger.Debug("accepted",
					zap.Int("index", song.Index),
					zap.String("level", string(result.Level)),
					zap.Float64("score", result.Score),
					zap.Int("attempts", result.Attempts))
				if r.cfg.Recorder != nil {
					if err := r.cfg.Recorder.Record(*result); err != nil {
						return report, fmt.Errorf("recording result: %w", err)
					}
				}
			}
		}
		report.Processed++

		if every > 0 && report.Processed%every == 0 {
			path := filepath.Join(r.cfg.ResultsDir, fmt.Sprintf("parcial_%d.csv", report.Processed))
			if err := WriteCSV(path, profile, report.Results); err != nil {
				return report, fmt.Errorf("writing checkpoint: %w", err)
			}
			report.Checkpoints = append(report.Checkpoints, path)
			fmt.Fprintf(r.cfg.Out, "[Salvo parcial em: %s]\n", path)
		}
	}

	if len(report.Results) == 0 {
		fmt.Fprintln(r.cfg.Out, "Nenhum resultado retornado.")
		return report, nil
	}

	stamp := r.cfg.Now().Format("20060102_150405")
	report.CSVPath = filepath.Join(r.cfg.ResultsDir, outputPrefix+stamp+".csv")
	report.JSONPath = filepath.Join(r.cfg.ResultsDir, outputPrefix+stamp+".json")
	if err := WriteCSV(report.CSVPath, profile, report.Results); err != nil {
		return report, err
	}
	if err := WriteJSON(report.JSONPath, profile, report.Results); err != nil {
		return report, err
	}
	return report, nil
}
