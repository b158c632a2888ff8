package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
)

// DefaultTimeout bounds every publish request.
const DefaultTimeout = 5 * time.Second

// Client posts reports and progress to a running feed server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL, e.g. http://127.0.0.1:8050.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// PublishReport sends rep to /update_data.
func (c *Client) PublishReport(ctx context.Context, rep *analysis.IndicatorReport) (*UpdateResponse, error) {
	var out UpdateResponse
	if err := c.post(ctx, "/update_data", rep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishProgress sends a progress update to /progress.
func (c *Client) PublishProgress(ctx context.Context, processed, total int) error {
	return c.post(ctx, "/progress", Progress{Processed: processed, Total: total}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dashboard %s: %s: %s", path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
