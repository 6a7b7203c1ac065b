package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultEndpoint = "http://localhost:11434"

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options are the model generation parameters. The pointer fields are only
// sent when set.
type Options struct {
	Temperature   float64  `json:"temperature" yaml:"temperature"`
	NumCtx        int      `json:"num_ctx,omitempty" yaml:"num_ctx"`
	NumPredict    int      `json:"num_predict,omitempty" yaml:"num_predict"`
	TopP          *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	TopK          *int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty" yaml:"repeat_penalty,omitempty"`
	Seed          *int     `json:"seed,omitempty" yaml:"seed,omitempty"`
}

type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type GenerateResponse struct {
	Model         string `json:"model"`
	Response      string `json:"response"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration"`
}

type Config struct {
	// Endpoint of the Ollama server. Defaults to DefaultEndpoint.
	Endpoint string

	// Timeout per request; zero waits indefinitely.
	Timeout time.Duration

	// RequestsPerSecond throttles calls; zero or less means unlimited.
	RequestsPerSecond float64

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient HTTPDoer

	Logger *zap.Logger
}

// Client calls the Ollama generate API, one blocking request at a time.
type Client struct {
	endpoint   string
	httpClient HTTPDoer
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(cfg Config) *Client {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Generate sends a non-streaming generation request and returns the decoded
// reply.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("model is required")
	}
	req.Stream = false

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out GenerateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	c.logger.Debug("ollama generate",
		zap.String("model", req.Model),
		zap.Int("prompt_chars", len(req.Prompt)),
		zap.Int("response_chars", len(out.Response)),
		zap.Duration("elapsed", time.Since(start)))
	return &out, nil
}
