// SPDX-License-Identifier: MPL-2.0

// Package pcgamingwiki looks up game engines on PCGamingWiki through its
// Cargo query API.
package pcgamingwiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
)

const (
	// DefaultBaseURL is the public PCGamingWiki API endpoint.
	DefaultBaseURL = "https://www.pcgamingwiki.com/w/api.php"

	// maxResponseBytes bounds a single query response (1 MB).
	maxResponseBytes = 1 << 20
)

type (
	// Client queries PCGamingWiki.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	cargoResponse struct {
		CargoQuery []struct {
			Title struct {
				Engine string `json:"Engine"`
				Build  string `json:"Build"`
			} `json:"title"`
		} `json:"cargoquery"`
	}
)

// WithHTTPClient sets the HTTP client used for queries.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(w *Client) {
		w.httpClient = c
	}
}

// WithBaseURL overrides the API endpoint, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(w *Client) {
		w.baseURL = base
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(w *Client) {
		w.userAgent = ua
	}
}

// NewClient creates a Client for DefaultBaseURL.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "modpal/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EngineByTitle returns the first recognized engine listed for the page
// titled title. It returns (nil, nil) when the wiki has no usable engine.
// The signature matches enginecache.Lookup.
func (c *Client) EngineByTitle(ctx context.Context, title string) (*engine.GameEngine, error) {
	reqURL := c.queryURL(`Infobox_game._pageName="` + escapeCargo(title) + `"`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.Network("query engine", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Network("query engine", c.baseURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed cargoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return nil, fault.Network("query engine", c.baseURL, fmt.Errorf("decoding response: %w", err))
	}

	for _, row := range parsed.CargoQuery {
		brand, err := engine.ParseBrand(row.Title.Engine)
		if err != nil {
			continue
		}
		result := &engine.GameEngine{Brand: brand}
		if v, err := engine.ParseVersion(row.Title.Build); err == nil {
			result.Version = v
		}
		return result, nil
	}
	return nil, nil
}

func (c *Client) queryURL(where string) string {
	q := url.Values{}
	q.Set("action", "cargoquery")
	q.Set("format", "json")
	q.Set("tables", "Infobox_game,Infobox_game_engine")
	q.Set("fields", "Infobox_game_engine.Engine=Engine,Infobox_game_engine.Build=Build")
	q.Set("join_on", "Infobox_game._pageID=Infobox_game_engine._pageID")
	q.Set("where", where)
	return c.baseURL + "?" + q.Encode()
}

// escapeCargo escapes a value for use inside a double-quoted Cargo string.
func escapeCargo(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
