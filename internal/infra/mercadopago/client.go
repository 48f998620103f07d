package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"pagamento-api/internal/domain/billing"
)

const (
	DefaultBaseURL = "https://api.mercadopago.com"

	// MercadoPago expects ISO-8601 with milliseconds and a numeric offset.
	dateLayout = "2006-01-02T15:04:05.000-07:00"

	maxResponseBytes = 1 << 20
)

type Config struct {
	AccessToken string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is optional; when nil one is built with Timeout.
	HTTPClient *http.Client

	// Timeout bounds every request, defaults to 10s.
	Timeout time.Duration

	// Sandbox selects sandbox_init_point as the redirect link.
	Sandbox bool
}

// Client talks to the MercadoPago REST API. It holds no per-payment state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	sandbox    bool
	now        func() time.Time
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.AccessToken,
		httpClient: httpClient,
		sandbox:    cfg.Sandbox,
		now:        time.Now,
	}
}

// CreatePreference opens a checkout preference for a single item.
func (c *Client) CreatePreference(ctx context.Context, req billing.PreferenceRequest) (*billing.Preference, error) {
	now := c.now()
	body := preferenceBody{
		Items: []preferenceItem{{
			Title:      req.Title,
			Quantity:   1,
			CurrencyID: req.Currency,
			UnitPrice:  json.Number(req.Amount.String()),
		}},
		BackURLs: backURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:        req.AutoReturn,
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}
	if req.MetadataUserID != "" {
		body.Metadata = map[string]string{"user_id": req.MetadataUserID}
	}
	if req.Expiry > 0 {
		body.Expires = true
		body.ExpirationDateFrom = now.Format(dateLayout)
		body.ExpirationDateTo = now.Add(req.Expiry).Format(dateLayout)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}

	var out preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", payload, &out); err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return nil, fmt.Errorf("create preference: %w: %v", billing.ErrProviderRejected, err)
		}
		return nil, fmt.Errorf("create preference: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("create preference: %w: response without id", billing.ErrProviderUnavailable)
	}

	redirect := out.InitPoint
	if c.sandbox && out.SandboxInitPoint != "" {
		redirect = out.SandboxInitPoint
	}
	return &billing.Preference{ID: out.ID, RedirectURL: redirect}, nil
}

// FetchPayment returns the provider's current view of a payment.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*billing.ProviderPayment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("fetch payment: %w: empty payment id", billing.ErrNotFound)
	}

	var out paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &out); err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	// ids are numeric today; anything else falls back to the requested id
	id, err := cast.ToStringE(out.ID)
	if err != nil || id == "" {
		id = paymentID
	}
	return &billing.ProviderPayment{
		ID:                id,
		Status:            NormalizeStatus(out.Status),
		StatusDetail:      out.StatusDetail,
		ExternalReference: out.ExternalReference,
		Amount:            out.TransactionAmount,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", billing.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", billing.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %w", billing.ErrProviderUnavailable, err)
		}
		return nil
	}

	return statusError(resp.StatusCode, raw)
}

func statusError(code int, raw []byte) error {
	msg := http.StatusText(code)
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	var kind error
	switch {
	case code == http.StatusNotFound:
		kind = billing.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		kind = billing.ErrProviderUnavailable
	default:
		kind = billing.ErrProviderRejected
	}
	return fmt.Errorf("%w: status %d: %s", kind, code, msg)
}
