package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pageLimit = 100

// Client is a Helius HTTP client for the enriched transaction history API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetPage returns one page of a wallet's transaction history, newest first.
// An empty before fetches from the most recent transaction; otherwise the
// page starts after the given signature. An empty page means end of history.
func (c *Client) GetPage(ctx context.Context, wallet, before string) ([]Transaction, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("limit", fmt.Sprintf("%d", pageLimit))
	if before != "" {
		q.Set("before", before)
	}
	reqURL := fmt.Sprintf("%s/v0/addresses/%s/transactions?%s", c.baseURL, url.PathEscape(wallet), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(data))
	}

	// The endpoint sometimes answers 200 with an error object instead of
	// the transaction list; that counts as a failed attempt, not bad data.
	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}

	return txs, nil
}
