package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/ademuri/lyrics-tools/internal/dataset"
	"github.com/ademuri/lyrics-tools/internal/ollama"
	"github.com/ademuri/lyrics-tools/internal/toxicity"
)

// Generator produces a completion for a prompt. *ollama.Client implements
// it.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (*ollama.GenerateResponse, error)
}

// Result is an accepted classification of one song.
type Result struct {
	Index         int
	Title         string
	Artist        string
	Year          int
	Level         toxicity.Level
	Score         float64
	Flags         []bool
	Justification string
	// Attempts is the number of model calls it took.
	Attempts int
}

// Classifier grades songs with a language model under one profile.
type Classifier struct {
	gen      Generator
	profile  *Profile
	model    string
	examples []dataset.ManualExample
	logger   *zap.Logger
}

// NewClassifier returns a classifier for profile. An empty model uses the
// profile's model; a nil logger discards logs.
func NewClassifier(gen Generator, profile *Profile, model string, examples []dataset.ManualExample, logger *zap.Logger) *Classifier {
	if model == "" {
		model = profile.Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		gen:      gen,
		profile:  profile,
		model:    model,
		examples: examples,
		logger:   logger,
	}
}

func (c *Classifier) Profile() *Profile {
	return c.profile
}

func (c *Classifier) Model() string {
	return c.model
}

// Classify sends the song to the model, retrying with the same prompt until
// a reply is accepted or the profile's attempts run out. The returned error
// is the last attempt's.
func (c *Classifier) Classify(ctx context.Context, song dataset.Song) (*Result, error) {
	prompt := BuildPrompt(c.profile, c.examples, song.Lyrics)
	req := ollama.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Options: c.profile.Options,
	}
	logger := c.logger.With(zap.Int("index", song.Index), zap.String("title", song.Title))

	var result *Result
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			resp, err := c.gen.Generate(ctx, req)
			if err != nil {
				return err
			}
			raw := strings.TrimSpace(resp.Response)
			if raw == "" {
				return ErrEmptyResponse
			}
			parsed := ParseResponse(raw, c.profile)
			if c.profile.RequireValid {
				if err := Check(parsed, c.profile); err != nil {
					logger.Debug("rejected reply", zap.String("response", raw))
					return err
				}
			}
			logger.Debug("parsed reply", zap.Stringer("source", parsed.Source))
			result = c.newResult(song, parsed, attempts)
			return nil
		},
		retry.Attempts(uint(c.profile.MaxAttempts)),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(error) bool {
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("attempt failed",
				zap.Uint("attempt", n+1),
				zap.Int("max_attempts", c.profile.MaxAttempts),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("classifying %q after %d attempts: %w", song.Title, attempts, err)
	}
	return result, nil
}

func (c *Classifier) newResult(song dataset.Song, r Response, attempts int) *Result {
	score := r.Score
	if c.profile.Schema == SchemaLevel {
		score = r.Level.Score()
	}
	return &Result{
		Index:         song.Index,
		Title:         song.Title,
		Artist:        song.Artist,
		Year:          song.Year,
		Level:         r.Level,
		Score:         score,
		Flags:         r.Flags,
		Justification: r.Justification,
		Attempts:      attempts,
	}
}
