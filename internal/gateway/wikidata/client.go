// Package wikidata implements the composer authority lookup against the
// Wikidata entity API.
package wikidata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"examrecord/internal/config"

	"github.com/tidwall/gjson"
)

// ErrNotFound means the id does not exist on the authority side. Callers
// must keep this distinct from transport failures.
var ErrNotFound = errors.New("wikidata entity not found")

// Client talks to the Wikidata search and entity-data endpoints.
type Client struct {
	apiURL     string
	entityURL  string
	userAgent  string
	httpClient *http.Client
}

// NewClient constructs a Wikidata client from configuration.
func NewClient(cfg config.WikidataConfig) (*Client, error) {
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, fmt.Errorf("wikidata.api_url cannot be empty")
	}
	entityURL := strings.TrimRight(strings.TrimSpace(cfg.EntityURL), "/")
	if entityURL == "" {
		return nil, fmt.Errorf("wikidata.entity_url cannot be empty")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		entityURL:  entityURL,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ComposerResult is one hit from the authority's search.
type ComposerResult struct {
	Name        string `json:"name"`
	WikidataID  string `json:"wikidata_id"`
	Description string `json:"description"`
}

// SearchComposers queries wbsearchentities and keeps only hits whose
// description mentions "composer"; the raw search is broad and returns
// plenty of namesakes otherwise.
func (c *Client) SearchComposers(ctx context.Context, query string) ([]ComposerResult, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", query)
	params.Set("language", "en")
	params.Set("format", "json")
	params.Set("type", "item")
	params.Set("limit", "10")

	body, err := c.get(ctx, c.apiURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var results []ComposerResult
	gjson.GetBytes(body, "search").ForEach(func(_, item gjson.Result) bool {
		description := item.Get("description").String()
		if !strings.Contains(strings.ToLower(description), "composer") {
			return true
		}
		results = append(results, ComposerResult{
			Name:        item.Get("label").String(),
			WikidataID:  item.Get("id").String(),
			Description: description,
		})
		return true
	})
	return results, nil
}

// Entity is the fetched authority record for one id. Raw keeps the entity
// JSON so the store can snapshot it alongside the composer.
type Entity struct {
	WikidataID string
	Name       string
	Raw        []byte
}

// ComposerByID fetches the entity data document for one Wikidata id.
func (c *Client) ComposerByID(ctx context.Context, wikidataID string) (*Entity, error) {
	wikidataID = strings.TrimSpace(wikidataID)
	if wikidataID == "" {
		return nil, fmt.Errorf("wikidata id cannot be empty")
	}
	body, err := c.get(ctx, c.entityURL+"/"+url.PathEscape(wikidataID)+".json")
	if err != nil {
		return nil, err
	}
	entity := gjson.GetBytes(body, "entities."+wikidataID)
	if !entity.Exists() {
		return nil, ErrNotFound
	}
	return &Entity{
		WikidataID: wikidataID,
		Name:       entity.Get("labels.en.value").String(),
		Raw:        []byte(entity.Raw),
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("wikidata returned malformed JSON")
	}
	return body, nil
}
