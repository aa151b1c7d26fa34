// Package pipeline is the boundary to the external content-generation
// service. The service's internals are unobservable here: one request in,
// two artifact locations or an error out.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/contentcrew/backend/internal/execution"
)

type generateRequest struct {
	Topic string `json:"topic"`
}

type generateResponse struct {
	ReportPath string `json:"report_path"`
	BlogPath   string `json:"blog_path"`
}

// Client calls the generator service over HTTP. The request can take on the
// order of minutes; the caller's context bounds it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// No client-side timeout: the worker deadline on ctx is the bound.
		httpClient: &http.Client{},
	}
}

var _ execution.Pipeline = (*Client)(nil)

func (c *Client) Generate(ctx context.Context, topic string) (*execution.Artifacts, error) {
	body, err := json.Marshal(generateRequest{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generator response: %w", err)
	}
	if out.ReportPath == "" || out.BlogPath == "" {
		return nil, fmt.Errorf("generator response missing artifact paths")
	}
	return &execution.Artifacts{ReportPath: out.ReportPath, BlogPath: out.BlogPath}, nil
}
