// Package openopus implements the work catalog lookup against the Open
// Opus API.
package openopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"examrecord/internal/config"
)

// Client talks to the Open Opus REST API.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs an Open Opus client from configuration.
func NewClient(cfg config.OpenopusConfig) (*Client, error) {
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		return nil, fmt.Errorf("openopus.api_url cannot be empty")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Composer is the subset of the catalog's composer record we consume.
type Composer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Complete string `json:"complete_name"`
	Epoch    string `json:"epoch"`
}

// Work is one catalog entry from a composer's work list.
type Work struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Genre    string `json:"genre"`
}

// PopularComposers fetches the catalog's curated popular-composer list,
// used for seeding.
func (c *Client) PopularComposers(ctx context.Context) ([]Composer, error) {
	var payload struct {
		Composers []Composer `json:"composers"`
	}
	if err := c.getJSON(ctx, c.apiURL+"/composer/list/pop.json", &payload); err != nil {
		return nil, err
	}
	return payload.Composers, nil
}

// SearchWorks fetches the full work list of one catalog composer and
// filters it locally: the catalog has no reliable global work search, so a
// composer id is required to scope the query. An unknown composer yields an
// empty result, not an error.
func (c *Client) SearchWorks(ctx context.Context, query, composerID string) ([]Work, error) {
	composerID = strings.TrimSpace(composerID)
	if composerID == "" {
		return nil, nil
	}
	var payload struct {
		Works []Work `json:"works"`
	}
	endpoint := c.apiURL + "/work/list/composer/" + url.PathEscape(composerID) + "/genre/all.json"
	err := c.getJSON(ctx, endpoint, &payload)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []Work
	for _, w := range payload.Works {
		if strings.Contains(strings.ToLower(w.Title), needle) ||
			strings.Contains(strings.ToLower(w.Subtitle), needle) {
			out = append(out, w)
		}
	}
	return out, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openopus returned status %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decoding openopus response failed: %w", err)
	}
	return nil
}
