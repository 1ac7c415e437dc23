package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OllamaGenerator sends prompts to an Ollama-compatible /api/chat endpoint.
type OllamaGenerator struct {
	upstreamURL string
	model       string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewOllamaGenerator creates a generator for the given upstream and model.
func NewOllamaGenerator(upstreamURL, model string, timeout time.Duration, logger *zap.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		upstreamURL: strings.TrimRight(upstreamURL, "/"),
		model:       model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Model returns the configured model name.
func (g *OllamaGenerator) Model() string {
	return g.model
}

// Generate runs a single non-streaming chat completion.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt *Prompt) (string, error) {
	streaming := false
	req := ChatRequest{
		Model:    g.model,
		Messages: prompt.Messages(),
		Stream:   &streaming,
		Options:  prompt.Options,
	}
	if len(prompt.Output) > 0 {
		req.Format = "json"
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	upstreamURL := g.upstreamURL + "/api/chat"
	g.logger.Debug("sending prompt to upstream",
		zap.String("url", upstreamURL),
		zap.String("prompt", prompt.Name),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned %d: %s", httpResp.StatusCode, string(body))
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	g.logger.Debug("received response from upstream",
		zap.String("model", resp.Model),
		zap.Int("prompt_eval_count", resp.PromptEvalCount),
		zap.Int("eval_count", resp.EvalCount),
	)

	return resp.Message.Content, nil
}
