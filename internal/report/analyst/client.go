// Package analyst talks to a local Ollama server to turn monthly statistics
// into narrative report sections.
package analyst

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

	"github.com/sahelsolar/fieldops/internal/observability/tracing"
	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
)

const (
	connectTimeout  = 20 * time.Second
	generateTimeout = 3 * time.Minute
)

// Analyst produces the narrative sections of a monthly report.
type Analyst interface {
	// Available reports whether the analyst can serve a generation request.
	Available(ctx context.Context) bool
	// Analyze returns the raw narrative for the given month's statistics.
	Analyze(ctx context.Context, stats reportdomain.MonthlyStats) (string, error)
}

// Client is the Ollama-backed Analyst.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, model string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    tracing.WrapHTTPClient(&http.Client{Timeout: generateTimeout}),
		log:     log.Named("report.analyst"),
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Available checks the server's tag list for the configured model.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("analyst unreachable", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	for _, model := range tags.Models {
		if strings.Contains(model.Name, c.model) {
			return true
		}
	}
	c.log.Debug("configured model not pulled", zap.String("model", c.model))
	return false
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Analyze sends the report prompt and returns the model's raw answer.
func (c *Client) Analyze(ctx context.Context, stats reportdomain.MonthlyStats) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: BuildPrompt(stats),
		Stream: false,
		Options: map[string]any{
			"temperature": 0.3,
			"num_predict": 800,
			"num_ctx":     2048,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", reportdomain.ErrAnalystUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", reportdomain.ErrAnalystUnavailable, resp.StatusCode)
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", err
	}
	return generated.Response, nil
}
