package goldfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://www.goldapi.io/api"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("gold price api key is required")

// Quote is a spot gold price per gram in a single currency.
type Quote struct {
	Currency     enums.Asset
	PricePerGram decimal.Decimal
	Open         decimal.Decimal
	High         decimal.Decimal
	Low          decimal.Decimal
	QuotedAt     time.Time
}

// Client wraps the external spot-price API used for gold quotes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured feed base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the gold feed client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// FetchQuote retrieves the current gold spot price in the given currency.
func (c *Client) FetchQuote(ctx context.Context, currency enums.Asset) (*Quote, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gold feed client not configured")
	}
	if !currency.IsCash() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quote currency must be cash, got %q", currency)
	}

	endpoint := fmt.Sprintf("%s/XAU/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(currency.String()))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build quote request")
	}
	httpReq.Header.Set("x-access-token", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute quote request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "quote request failed")
	}

	var apiResp struct {
		Timestamp    int64           `json:"timestamp"`
		PriceGram24K decimal.Decimal `json:"price_gram_24k"`
		OpenPrice    decimal.Decimal `json:"open_price"`
		HighPrice    decimal.Decimal `json:"high_price"`
		LowPrice     decimal.Decimal `json:"low_price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode quote response")
	}
	if apiResp.PriceGram24K.IsZero() || apiResp.PriceGram24K.IsNegative() {
		return nil, pkgerrors.Newf(pkgerrors.CodeDependency, "feed returned non-positive gram price %s", apiResp.PriceGram24K)
	}

	quotedAt := time.Now().UTC()
	if apiResp.Timestamp > 0 {
		quotedAt = time.Unix(apiResp.Timestamp, 0).UTC()
	}

	// open/high/low arrive per troy ounce; normalize them to grams using the
	// same ratio the feed applied to the spot price.
	return &Quote{
		Currency:     currency,
		PricePerGram: apiResp.PriceGram24K,
		Open:         perGram(apiResp.OpenPrice, apiResp.PriceGram24K),
		High:         perGram(apiResp.HighPrice, apiResp.PriceGram24K),
		Low:          perGram(apiResp.LowPrice, apiResp.PriceGram24K),
		QuotedAt:     quotedAt,
	}, nil
}

const gramsPerTroyOunce = "31.1034768"

func perGram(ouncePrice, fallback decimal.Decimal) decimal.Decimal {
	if ouncePrice.IsZero() || ouncePrice.IsNegative() {
		return fallback
	}
	return ouncePrice.Div(decimal.RequireFromString(gramsPerTroyOunce)).Round(6)
}
