package goldfeed

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientFetchQuote(t *testing.T) {
	const expectedURL = "http://feed.test/api/XAU/USD"
	respBody := `{"timestamp":1718000000,"price_gram_24k":65.50,"open_price":2030.10,"high_price":2041.00,"low_price":2019.30}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://feed.test/api"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	quote, err := client.FetchQuote(context.Background(), enums.AssetUSD)
	if err != nil {
		t.Fatalf("fetch quote: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("x-access-token") != "test-key" {
		t.Fatalf("access token header missing")
	}
	if !quote.PricePerGram.Equal(decimal.RequireFromString("65.5")) {
		t.Fatalf("unexpected gram price %s", quote.PricePerGram)
	}
	if quote.QuotedAt.Unix() != 1718000000 {
		t.Fatalf("unexpected quote time %v", quote.QuotedAt)
	}
	// 2030.10 per troy ounce is roughly 65.27 per gram.
	if quote.Open.LessThan(decimal.RequireFromString("65")) || quote.Open.GreaterThan(decimal.RequireFromString("66")) {
		t.Fatalf("unexpected open %s", quote.Open)
	}
}

func TestClientFetchQuoteRejectsGoldCurrency(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchQuote(context.Background(), enums.AssetGold)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientFetchQuoteUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader(`{"error":"maintenance"}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchQuote(context.Background(), enums.AssetUSD)
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientFetchQuoteNonPositivePrice(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"timestamp":1,"price_gram_24k":0}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchQuote(context.Background(), enums.AssetUSD)
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
