package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeHTTPDoer struct {
	statusCode  int
	body        string
	requestBody []byte
	requestURL  string
}

func (f *fakeHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	f.requestURL = req.URL.String()
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		f.requestBody = data
	}
	return &http.Response{
		StatusCode: f.statusCode,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func TestGenerateSendsOptions(t *testing.T) {
	doer := &fakeHTTPDoer{statusCode: http.StatusOK, body: `{"model":"mistral:instruct","response":"ok","done":true}`}
	client := NewClient(Config{Endpoint: "http://ollama:11434/", HTTPClient: doer})

	topK := 40
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Model:  "mistral:instruct",
		Prompt: "hello",
		Stream: true,
		Options: Options{
			Temperature: 0.1,
			NumCtx:      2048,
			NumPredict:  200,
			TopK:        &topK,
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Response != "ok" {
		t.Errorf("Response = %q, want ok", resp.Response)
	}
	if doer.requestURL != "http://ollama:11434/api/generate" {
		t.Errorf("request URL = %q", doer.requestURL)
	}

	var payload map[string]any
	if err := json.Unmarshal(doer.requestBody, &payload); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if payload["stream"] != false {
		t.Errorf("stream = %v, want false", payload["stream"])
	}
	options, ok := payload["options"].(map[string]any)
	if !ok {
		t.Fatalf("options missing from request: %s", doer.requestBody)
	}
	if options["temperature"] != 0.1 || options["num_ctx"] != 2048.0 || options["num_predict"] != 200.0 || options["top_k"] != 40.0 {
		t.Errorf("options = %v", options)
	}
	if _, ok := options["top_p"]; ok {
		t.Errorf("unset top_p should be omitted: %v", options)
	}
}

func TestGenerateStatusError(t *testing.T) {
	doer := &fakeHTTPDoer{statusCode: http.StatusNotFound, body: `{"error":"model not found"}`}
	client := NewClient(Config{HTTPClient: doer})

	_, err := client.Generate(context.Background(), GenerateRequest{Model: "missing", Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("Generate: got %v, want status error with body", err)
	}
}

func TestGenerateBadJSON(t *testing.T) {
	doer := &fakeHTTPDoer{statusCode: http.StatusOK, body: `not json`}
	client := NewClient(Config{HTTPClient: doer})

	if _, err := client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "x"}); err == nil {
		t.Fatalf("Generate should fail on an undecodable body")
	}
}

func TestGenerateRequiresModel(t *testing.T) {
	client := NewClient(Config{HTTPClient: &fakeHTTPDoer{statusCode: http.StatusOK}})
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatalf("Generate should require a model")
	}
}

func TestGenerateAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(GenerateResponse{Model: req.Model, Response: "echo: " + req.Prompt, Done: true})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, RequestsPerSecond: 100})
	resp, err := client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Response != "echo: hi" {
		t.Errorf("Response = %q", resp.Response)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	client := NewClient(Config{HTTPClient: &fakeHTTPDoer{statusCode: http.StatusOK, body: `{}`}, RequestsPerSecond: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Generate(ctx, GenerateRequest{Model: "m", Prompt: "x"}); err == nil {
		t.Fatalf("Generate should fail with a cancelled context")
	}
}
