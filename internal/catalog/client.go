// SPDX-License-Identifier: MPL-2.0

// Package catalog fetches per-loader mod databases and mod archives.
//
// Each loader has one JSON document at <base>/<loader id>.json:
//
//	{"mods": {"<mod id>": {"title": "...", "author": "...", "sourceCode": "...",
//	  "description": "...", "engine": "Unity", "unityBackend": "Il2Cpp",
//	  "downloads": [{"url": "...", "version": "1.2.0"}]}}}
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/gamemod"
)

const (
	// DefaultBaseURL hosts the public mod database.
	DefaultBaseURL = "https://raw.githubusercontent.com/modpal/mod-db/main"

	// maxJSONResponseBytes bounds a catalog document (10 MB).
	maxJSONResponseBytes = 10 << 20
)

type (
	// Entry is one mod in a loader's database.
	Entry struct {
		Title        string               `json:"title"`
		Author       string               `json:"author"`
		SourceCode   string               `json:"sourceCode"`
		Description  string               `json:"description"`
		Engine       *engine.Brand        `json:"engine,omitempty"`
		UnityBackend *engine.UnityBackend `json:"unityBackend,omitempty"`
		Downloads    []gamemod.Download   `json:"downloads"`
	}

	// Database is the document served for one loader.
	Database struct {
		Mods map[string]Entry `json:"mods"`
	}

	// Client talks to the mod database host.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

// WithBaseURL overrides the database base URL.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client for DefaultBaseURL using http.DefaultClient.
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

// Fetch downloads and decodes the database for loaderID. Any failure is a
// fault.ErrExternalNetwork error.
func (c *Client) Fetch(ctx context.Context, loaderID string) (*Database, error) {
	dbURL := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(loaderID))

	resp, err := c.doRequest(ctx, dbURL)
	if err != nil {
		return nil, fault.Network("fetch mod database", dbURL, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Network("fetch mod database", dbURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var db Database
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&db); err != nil {
		return nil, fault.Network("fetch mod database", dbURL, fmt.Errorf("decoding response: %w", err))
	}
	if db.Mods == nil {
		db.Mods = map[string]Entry{}
	}
	return &db, nil
}

// RemoteMods converts the database into remote mods owned by loaderID.
func (db *Database) RemoteMods(loaderID string) gamemod.RemoteMap {
	mods := make(gamemod.RemoteMap, len(db.Mods))
	for id, e := range db.Mods {
		mods[id] = gamemod.RemoteMod{
			Common: gamemod.CommonData{
				ID:           id,
				LoaderID:     loaderID,
				Engine:       e.Engine,
				UnityBackend: e.UnityBackend,
			},
			Data: gamemod.RemoteData{
				Title:       e.Title,
				Author:      e.Author,
				SourceCode:  e.SourceCode,
				Description: e.Description,
				Downloads:   e.Downloads,
			},
		}
	}
	return mods
}

// Download starts fetching the archive at archiveURL and returns the response
// body as a stream. The caller must close it.
func (c *Client) Download(ctx context.Context, archiveURL string) (io.ReadCloser, error) {
	resp, err := c.doRequest(ctx, archiveURL)
	if err != nil {
		return nil, fault.Network("download mod", redactURL(archiveURL), err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close() // read-only response body
		return nil, fault.Network("download mod", redactURL(archiveURL), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return resp.Body, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// redactURL strips query parameters and fragments so signed download links
// never end up in logs.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
