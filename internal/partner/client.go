// Package partner talks to the external commerce platform (Uniware) that
// orders are relayed to and cancellations confirmed against.
package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrCancellationRejected is returned when the platform answers the request
// but does not report success.
var ErrCancellationRejected = errors.New("partner platform rejected cancellation")

// Credentials are the per-merchant headers the platform authenticates by.
type Credentials struct {
	ClientID    string
	MerchantID  string
	SecurityKey string
}

// CancellationRequest is the payload relayed for a marketplace cancellation.
type CancellationRequest struct {
	SaleOrderCode      string         `json:"saleOrderCode"`
	CancelledSkuCodes  []CancelledSKU `json:"cancelledSkuCodes"`
	CancellationReason string         `json:"cancellationReason"`
}

// CancelledSKU identifies one cancelled line item by product/variant pair.
type CancelledSKU struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// CancelResponse is the platform's answer to a cancellation request. Status
// "success" confirms the cancellation; anything else is a rejection.
type CancelResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// Confirmed reports whether the platform accepted the cancellation.
func (r *CancelResponse) Confirmed() bool {
	return r.Status == "success"
}

// Client issues synchronous calls to the partner platform. One request, one
// response, no retries.
type Client struct {
	cancelURL  string
	forwardURL string
	httpClient *http.Client
}

func NewClient(cancelURL, forwardURL string, timeout time.Duration) *Client {
	return &Client{
		cancelURL:  cancelURL,
		forwardURL: forwardURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CancelOrder relays a cancellation and returns the platform's verdict. A
// non-2xx response or transport failure is an error carrying the remote body
// when one was received.
func (c *Client) CancelOrder(ctx context.Context, creds Credentials, req CancellationRequest) (*CancelResponse, error) {
	body, err := c.post(ctx, c.cancelURL, creds, req)
	if err != nil {
		return nil, err
	}

	resp := &CancelResponse{Raw: body}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("decode partner response: %w", err)
	}
	return resp, nil
}

// ForwardOrder relays an order payload as-is and returns the remote body.
func (c *Client) ForwardOrder(ctx context.Context, creds Credentials, payload any) (json.RawMessage, error) {
	return c.post(ctx, c.forwardURL, creds, payload)
}

func (c *Client) post(ctx context.Context, url string, creds Credentials, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal partner payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("clientid", creds.ClientID)
	req.Header.Set("merchantid", creds.MerchantID)
	req.Header.Set("securitykey", creds.SecurityKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partner request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read partner response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("partner returned status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
