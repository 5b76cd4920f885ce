// Package translate wraps the translation service. Translation is strictly
// best-effort: any failure returns the source text unchanged, so an alert
// always goes out even when the translator is down.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"siren-node/internal/domain"
	"siren-node/internal/observe"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observe.Metrics
	logger     *slog.Logger
}

func NewClient(baseURL string, metrics *observe.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		metrics:    metrics,
		logger:     logger,
	}
}

type translateRequest struct {
	Text   string `json:"q"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate returns text rendered in targetLanguage, or the original text
// when the target equals the primary language, the input is empty, or the
// service fails or echoes the input unchanged. It never returns an error.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" || targetLanguage == domain.DefaultLanguage {
		return text
	}

	translated, err := c.call(ctx, text, targetLanguage)
	if err != nil {
		c.logger.Warn("translation failed, using source text",
			"language", targetLanguage, "error", err)
		c.metrics.TranslationFallbacks.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", targetLanguage)))
		return text
	}
	return translated
}

func (c *Client) call(ctx context.Context, text, targetLanguage string) (string, error) {
	payload, err := json.Marshal(translateRequest{
		Text:   text,
		Target: domain.EngineCode(targetLanguage),
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API error %d", resp.StatusCode)
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", fmt.Errorf("empty translation")
	}
	// An echo means the engine did not actually translate.
	if result.TranslatedText == text {
		return "", fmt.Errorf("translation echoed the input")
	}
	return result.TranslatedText, nil
}
