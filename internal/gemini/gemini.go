// Package gemini wraps the generative-language API used for two slow,
// rate-limited enrichment tasks: pulling a location name out of a free-text
// disaster description, and judging image authenticity. Callers cache both.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// Client is a minimal Gemini generateContent client.
type Client struct {
	apiURL string
	apiKey string
	hc     *http.Client
}

// NewClient creates a new client. If httpClient is nil, a default with timeout is used.
func NewClient(apiURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{apiURL: apiURL, apiKey: apiKey, hc: httpClient}
}

// NewClientFromEnv reads GEMINI_API_URL and GEMINI_API_KEY.
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("GEMINI_API_URL"), os.Getenv("GEMINI_API_KEY"), nil)
}

// ExtractLocation pulls a location name out of a free-text description.
// An empty string means the model found no location.
func (c *Client) ExtractLocation(ctx context.Context, description string) (string, error) {
	return c.generate(ctx, fmt.Sprintf("Extract location from: %s", description))
}

// VerifyImage asks the model to assess an image for manipulation or missing
// disaster context, returning its verdict as free text.
func (c *Client) VerifyImage(ctx context.Context, imageURL string) (string, error) {
	return c.generate(ctx, fmt.Sprintf("Analyze image at %s for signs of manipulation or disaster context.", imageURL))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("gemini new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("gemini parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
