package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dhkim/gapboard/pkg/models"
	"golang.org/x/time/rate"
)

// Client talks to the dashboard backend's REST API. Requests share one rate
// limiter so a burst of pollers cannot hammer the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	auth       Authenticator
}

// Option configures a Client.
type Option func(*Client)

// WithAuthenticator attaches credentials to every request.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) { c.auth = auth }
}

// WithRateLimit bounds outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FundingGap fetches the cross-exchange funding snapshot. A non-2xx response
// is an error; callers skip the refresh and keep whatever they last rendered.
func (c *Client) FundingGap(ctx context.Context) ([]GapRow, error) {
	var rows []GapRow
	if err := c.getJSON(ctx, "/api/gap", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// BitgetLatest fetches the bitget-only funding snapshot.
func (c *Client) BitgetLatest(ctx context.Context) ([]BitgetLatestRow, error) {
	var rows []BitgetLatestRow
	if err := c.getJSON(ctx, "/api/bitget/latest", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// PlaceOrder submits an order for one exchange and returns the backend's
// response verbatim. The backend reports failures in the response body, so a
// non-2xx status with a decodable body is still a result, not an error.
func (c *Client) PlaceOrder(ctx context.Context, exchange models.Exchange, order models.OrderRequest) (models.OrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return models.OrderResult{}, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/%s/order", exchange), body)
	if err != nil {
		return models.OrderResult{}, err
	}
	defer resp.Body.Close()

	var result models.OrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.OrderResult{}, fmt.Errorf("decoding order response: %w", err)
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.auth != nil {
		if err := c.auth.AddAuthHeaders(req); err != nil {
			return nil, err
		}
	}

	return c.httpClient.Do(req)
}
