// Package tts talks to the speech-synthesis service co-located on the siren
// network. The service returns 16-bit PCM WAV for a text and language pair.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"siren-node/internal/domain"
	"siren-node/internal/infra"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize renders text as speech in the given language and returns the
// WAV bytes. Empty or whitespace-only text is rejected before any network
// call; an empty or non-WAV response body is an error, never silence.
func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("lang", domain.EngineCode(language))

	var audio []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/api/tts?"+q.Encode(), nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "audio/wav")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("tts API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("tts API error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if len(audio) == 0 || !bytes.HasPrefix(audio, []byte("RIFF")) {
		return nil, fmt.Errorf("%w: %d bytes from tts service", domain.ErrEmptyAudio, len(audio))
	}
	return audio, nil
}
