package smoketest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

// client wraps http.Client with the run id header.
type client struct {
	http    *http.Client
	baseURL string
	runID   string
	lang    string
}

// card is the subset of the student payload the checks need.
type card struct {
	StudentID   string `json:"student_id"`
	StudentType string `json:"student_type"`
	Rank        int    `json:"rank"`
	Scores      []struct {
		Key string `json:"key"`
	} `json:"scores"`
}

func (c card) hasScore(key string) bool {
	for _, s := range c.Scores {
		if s.Key == key {
			return true
		}
	}
	return false
}

type apiError struct {
	Code string `json:"code"`
}

// response is a decoded lookup response.
type response struct {
	Status int
	Card   card
	Error  apiError
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", c.runID)
	return c.http.Do(req)
}

// lookup fetches the card for id.
func (c *client) lookup(ctx context.Context, id string) (response, error) {
	path := "/api/students/" + url.PathEscape(id)
	if c.lang != "" {
		path += "?lang=" + url.QueryEscape(c.lang)
	}
	resp, err := c.get(ctx, path)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}

	out := response{Status: resp.StatusCode}
	target := any(&out.Error)
	if resp.StatusCode == http.StatusOK {
		target = &out.Card
	}
	if err := json.Unmarshal(body, target); err != nil {
		return out, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return out, nil
}

// healthy checks GET /healthz.
func (c *client) healthy(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}
