package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atomicstack/tabflip/internal/tabs"
	"github.com/google/uuid"
)

const defaultClientTimeout = 3 * time.Second

// Client talks to a Server. Each call is an independent request, so a
// restarted daemon is picked up on the next call.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for the daemon listening on addr
// ("127.0.0.1:47613" or a full http URL).
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		endpoint: base,
		http:     &http.Client{Timeout: defaultClientTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// GetRecents fetches the recents list for window (nil for the sender window).
func (c *Client) GetRecents(ctx context.Context, window *tabs.WindowID) ([]tabs.Descriptor, error) {
	resp, err := c.Send(ctx, GetRecents(window))
	if err != nil {
		return nil, err
	}
	return resp.Tabs, nil
}

// ActivateTab asks the daemon to foreground id.
func (c *Client) ActivateTab(ctx context.Context, id tabs.ID) error {
	_, err := c.Send(ctx, ActivateTab(id))
	return err
}

// Healthy reports whether the daemon answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+HealthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Send posts req and decodes the response. A request ID is assigned when
// missing.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s: %w", req.Type, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+MessagePath, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build %s: %w", req.Type, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if IsConnectionError(err) {
			return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return Response{}, fmt.Errorf("send %s: %w", req.Type, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", req.Type, err)
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("decode %s response (status %d): %w", req.Type, httpResp.StatusCode, err)
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}
