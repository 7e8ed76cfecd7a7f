package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/validation"
)

// Client talks to a running TreeRec server.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Search(ctx context.Context, query string) (*models.ActionResult, error) {
	var res models.ActionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/search", map[string]string{"query": query}, http.StatusOK, &res)
	return &res, err
}

func (c *Client) SocialPost(ctx context.Context, text string) (*models.ActionResult, error) {
	var res models.ActionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/actions/social", map[string]string{"text": text}, http.StatusOK, &res)
	return &res, err
}

func (c *Client) Streaming(ctx context.Context, text string) (*models.ActionResult, error) {
	var res models.ActionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/actions/streaming", map[string]string{"text": text}, http.StatusOK, &res)
	return &res, err
}

func (c *Client) View(ctx context.Context, id string) (*models.ActionResult, error) {
	var res models.ActionResult
	err := c.do(ctx, http.MethodPost, "/api/v1/items/"+url.PathEscape(id)+"/view", nil, http.StatusOK, &res)
	return &res, err
}

func (c *Client) Recommendations(ctx context.Context, limit int) ([]*models.ScoredItem, error) {
	var out struct {
		Recommendations []*models.ScoredItem `json:"recommendations"`
	}
	path := "/api/v1/recommendations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (c *Client) Interests(ctx context.Context) ([]models.InterestEntry, error) {
	var out struct {
		Interests []models.InterestEntry `json:"interests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/interests", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Interests, nil
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, http.StatusOK, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		var apiErr validation.APIError
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
