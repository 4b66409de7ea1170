package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avelins/restaurant-loadgen/internal/entities"
)

// Client is a one-shot HTTP client for the restaurant-ordering
// service. Keep-alives are disabled so every call opens its own
// connection, issues one request, reads the response fully and closes.
type Client struct {
	baseURL string
	http    *http.Client
	out     io.Writer
}

func New(baseURL string, timeout time.Duration, out io.Writer) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		out: out,
	}
}

func (c *Client) AddOrder(ctx context.Context, order OrderRequest) (entities.Outcome, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return entities.Outcome{}, fmt.Errorf("failed to marshal order: %w", err)
	}

	out, err := c.do(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return entities.Outcome{}, err
	}

	fmt.Fprintf(c.out, "Add Order Response: %s\n", out.Body)
	return out, nil
}

func (c *Client) QueryOrders(ctx context.Context, tableID int) (entities.Outcome, error) {
	out, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", tableID), nil)
	if err != nil {
		return entities.Outcome{}, err
	}

	fmt.Fprintf(c.out, "Query Orders for Table %d Response: %s\n", tableID, out.Body)
	return out, nil
}

func (c *Client) RemoveItem(ctx context.Context, tableID, itemID int) (entities.Outcome, error) {
	out, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d/%d", tableID, itemID), nil)
	if err != nil {
		return entities.Outcome{}, err
	}

	fmt.Fprintf(c.out, "Remove Item Response: %s\n", out.Body)
	return out, nil
}

// do performs a single round trip. Non-2xx responses are not errors:
// the body is returned for printing just like a success body. Only
// transport-level failures produce an error.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (entities.Outcome, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return entities.Outcome{}, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return entities.Outcome{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return entities.Outcome{}, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	return entities.Outcome{
		Method:     method,
		Path:       path,
		Status:     res.StatusCode,
		Body:       string(data),
		Duration:   time.Since(start),
		OccurredAt: start,
	}, nil
}
