// Package geocode resolves coordinates to a short human-readable place
// name through an HTTP reverse-geocoding endpoint. It is a thin
// collaborator: callers treat any failure as "no name" and fall back to
// showing coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver looks up a display name for a coordinate pair.
// A nil name with a nil error means the lookup succeeded but found nothing.
type Resolver interface {
	ResolveName(ctx context.Context, lat, lon float64) (*string, error)
}

// Client resolves names against a Nominatim-compatible /reverse endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a resolver for the given base URL
// (e.g. "https://nominatim.openstreetmap.org").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ResolveName(ctx context.Context, lat, lon float64) (*string, error) {
	params := url.Values{}
	params.Add("format", "jsonv2")
	params.Add("lat", fmt.Sprintf("%.6f", lat))
	params.Add("lon", fmt.Sprintf("%.6f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode.Client.ResolveName: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode.Client.ResolveName: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode.Client.ResolveName: status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode.Client.ResolveName: decode: %w", err)
	}

	return shortName(body.DisplayName), nil
}

// shortName keeps the leading component of a full display name, the part
// before the first comma ("Pier 39, San Francisco, …" → "Pier 39").
// An empty display name yields nil.
func shortName(displayName string) *string {
	head, _, _ := strings.Cut(displayName, ",")
	head = strings.TrimSpace(head)
	if head == "" {
		return nil
	}
	return &head
}

// Nop is a Resolver that never finds a name, for installations without a
// geocoding endpoint configured.
type Nop struct{}

func (Nop) ResolveName(context.Context, float64, float64) (*string, error) {
	return nil, nil
}

var (
	_ Resolver = (*Client)(nil)
	_ Resolver = Nop{}
)
