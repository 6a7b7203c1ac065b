/*
Copyright 2026 The lyrics-tools Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/lyrics-tools/internal/classify"
	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/notify"
	"github.com/ademuri/lyrics-tools/internal/ollama"
	"github.com/ademuri/lyrics-tools/internal/store"
)

const manualExamplesFile = "30-musicas-Mozart.csv"

type classifyOptions struct {
	Profile     string
	ProfileFile string
	Model       string

	// Examples is the manual-label CSV used for few-shot prompts. When
	// ExamplesRequired is false a missing file only logs a warning.
	Examples         string
	ExamplesRequired bool

	Offset          int
	Limit           int
	CheckpointEvery int

	Endpoint string
	Rate     float64
	Timeout  time.Duration

	// Notify is an email address to send the run summary to.
	Notify string
}

var classifyOpts classifyOptions

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classifies song lyrics for toxic relationship content with Ollama",
	Long: `Sends each song's lyrics to a local Ollama model using a prompt profile and
parses the replies into toxicity records. Invalid replies are retried up to the
profile's attempt limit, after which the song is skipped. Partial results are
written to <results-dir>/parcial_<n>.csv, the final results to timestamped CSV
and JSON files, and every run is recorded in the database.

Built-in profiles: ` + strings.Join(classify.ProfileNames(), ", "),
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if classifyOpts.Offset < 0 || classifyOpts.Limit < 0 {
			return fmt.Errorf("--offset and --limit must not be negative")
		}
		if classifyOpts.Rate < 0 {
			return fmt.Errorf("--rate must not be negative")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		opts := classifyOpts
		opts.Endpoint = viper.GetString("endpoint")
		opts.ExamplesRequired = cmd.Flags().Changed("examples")
		if opts.Examples == "" {
			opts.Examples = filepath.Join(viper.GetString("data-dir"), manualExamplesFile)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := runClassify(ctx, os.Stdout, viper.GetString("database"), viper.GetString("results-dir"), songsPath(), opts)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	flags := classifyCmd.Flags()
	flags.StringVar(&classifyOpts.Profile, "profile", classify.DefaultProfile, "built-in prompt profile")
	flags.StringVar(&classifyOpts.ProfileFile, "profile-file", "", "custom prompt profile YAML")
	classifyCmd.MarkFlagsMutuallyExclusive("profile", "profile-file")
	flags.StringVar(&classifyOpts.Model, "model", "", "override the profile's model")
	flags.StringVar(&classifyOpts.Examples, "examples", "", "manual-label CSV for few-shot examples (default is <data-dir>/"+manualExamplesFile+")")
	flags.IntVar(&classifyOpts.Offset, "offset", 0, "index of the first song to classify")
	flags.IntVar(&classifyOpts.Limit, "limit", 0, "classify at most this many songs, 0 for all")
	flags.IntVar(&classifyOpts.CheckpointEvery, "checkpoint-every", 0, "override the profile's checkpoint interval")
	flags.Float64Var(&classifyOpts.Rate, "rate", 0, "maximum model requests per second, 0 for unlimited")
	flags.DurationVar(&classifyOpts.Timeout, "timeout", 0, "timeout per model request, 0 for none")
	flags.StringVar(&classifyOpts.Notify, "notify", "", "email the run summary to this address")

	var endpoint string
	flags.StringVar(&endpoint, "endpoint", ollama.DefaultEndpoint, "Ollama server URL")
	viper.BindPFlag("endpoint", flags.Lookup("endpoint"))
}

func loadClassifyProfile(opts classifyOptions) (*classify.Profile, error) {
	if opts.ProfileFile != "" {
		return classify.LoadProfileFile(opts.ProfileFile)
	}
	return classify.LoadProfile(opts.Profile)
}

func loadExamples(opts classifyOptions, profile *classify.Profile) ([]dataset.ManualExample, error) {
	if profile.MaxExamples == 0 {
		return nil, nil
	}
	examples, err := dataset.LoadManualExamples(opts.Examples)
	if err != nil {
		if opts.ExamplesRequired {
			return nil, fmt.Errorf("loading examples: %w", err)
		}
		logger.Warn("continuing without few-shot examples", zap.String("path", opts.Examples), zap.Error(err))
		return nil, nil
	}
	logger.Info("loaded few-shot examples", zap.Int("count", len(examples)), zap.Int("used", min(len(examples), profile.MaxExamples)))
	return examples, nil
}

// selectSongs applies --offset and --limit.
func selectSongs(songs []dataset.Song, offset, limit int) ([]dataset.Song, error) {
	if offset > len(songs) {
		return nil, fmt.Errorf("offset %d is past the end of the dataset (%d songs)", offset, len(songs))
	}
	songs = songs[offset:]
	if limit > 0 && limit < len(songs) {
		songs = songs[:limit]
	}
	return songs, nil
}

func runClassify(ctx context.Context, out io.Writer, dbPath, resultsDir, songsCSV string, opts classifyOptions) error {
	profile, err := loadClassifyProfile(opts)
	if err != nil {
		return err
	}

	ds, err := dataset.LoadSongs(songsCSV)
	if err != nil {
		return fmt.Errorf("Erro ao carregar o dataset: %w", err)
	}
	songs, err := selectSongs(ds.Songs, opts.Offset, opts.Limit)
	if err != nil {
		return err
	}

	examples, err := loadExamples(opts, profile)
	if err != nil {
		return err
	}

	client := ollama.NewClient(ollama.Config{
		Endpoint:          opts.Endpoint,
		Timeout:           opts.Timeout,
		RequestsPerSecond: opts.Rate,
		Logger:            logger,
	})
	classifier := classify.NewClassifier(client, profile, opts.Model, examples, logger)

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	run := store.Run{
		ID:      uuid.NewString(),
		Profile: profile.Name,
		Schema:  string(profile.Schema),
		Flags:   profile.Flags,
		Model:   classifier.Model(),
		Started: time.Now(),
	}
	if err := s.CreateRun(run); err != nil {
		return err
	}
	logger.Info("starting run", zap.String("run", run.ID), zap.String("profile", run.Profile), zap.Int("songs", len(songs)))

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "\nAnalisando músicas para conteúdo tóxico em relacionamentos\n%s\nModelo em uso: %s\nPerfil: %s\n%s\n", rule, run.Model, run.Profile, rule)

	runner := classify.NewRunner(classifier, classify.RunnerConfig{
		ResultsDir:      resultsDir,
		CheckpointEvery: opts.CheckpointEvery,
		Out:             out,
		Recorder:        storeRecorder{store: s, runID: run.ID},
		Logger:          logger,
	})
	report, err := runner.Run(ctx, songs)
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("run %s interrupted; recover the results with 'export %s': %w", run.ID, run.ID, err)
	}

	run.Finished = time.Now()
	run.Processed = report.Processed
	run.Accepted = len(report.Results)
	run.Skipped = report.Skipped
	run.CSVPath = report.CSVPath
	run.JSONPath = report.JSONPath
	if finishErr := s.FinishRun(run); finishErr != nil {
		return errors.Join(err, finishErr)
	}
	if err != nil {
		return fmt.Errorf("run %s failed after %d songs: %w", run.ID, report.Processed, err)
	}

	if len(report.Results) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\n✅ Análise completa!\nResultados salvos em:\n→ CSV: %s\n→ JSON: %s\n\n", report.CSVPath, report.JSONPath)
	summary := classify.Summarize(profile, report.Results, report.Skipped)
	if err := summary.Print(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "Run: %s\n", run.ID)

	if opts.Notify != "" {
		sendRunReport(opts.Notify, run, summary)
	}
	return nil
}

// sendRunReport emails the run summary. Failures are only logged.
func sendRunReport(to string, run store.Run, summary classify.Summary) {
	notifier, err := notify.New(viper.GetString("sendgrid_api_key"), viper.GetString("from"))
	if err != nil {
		logger.Warn("not sending run report", zap.Error(err))
		return
	}
	if err := notifier.SendRunReport(to, run, summary); err != nil {
		logger.Warn("sending run report failed", zap.String("to", to), zap.Error(err))
		return
	}
	logger.Info("sent run report", zap.String("to", to))
}
