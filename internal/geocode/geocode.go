package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultAPIURL = "https://api.geoapify.com/v1/geocode/search"

// Client is a minimal Geoapify forward-geocoding client.
type Client struct {
	apiURL string
	apiKey string
	hc     *http.Client
}

// NewClient creates a new client. If httpClient is nil, a default with timeout is used.
func NewClient(apiURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{apiURL: apiURL, apiKey: apiKey, hc: httpClient}
}

// NewClientFromEnv reads GEOAPIFY_API_URL and GEOAPIFY_API_KEY.
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("GEOAPIFY_API_URL"), os.Getenv("GEOAPIFY_API_KEY"), nil)
}

// Coordinates is a single geocoding match.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Search geocodes a location name. It returns (nil, nil) when the upstream
// answers successfully but has no match for the name.
func (c *Client) Search(ctx context.Context, locationName string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("text", locationName)
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode new request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Features []struct {
			Properties struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("geocode parse response: %w", err)
	}
	if len(parsed.Features) == 0 {
		return nil, nil
	}
	p := parsed.Features[0].Properties
	return &Coordinates{Lat: p.Lat, Lng: p.Lon}, nil
}
