// Package apilayer fetches live exchange rates from the currencylayer "live"
// endpoint served by apilayer.net.
package apilayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/paytracker"
	"github.com/shopspring/decimal"
)

// DefaultURL is the live quotes endpoint.
const DefaultURL = "http://apilayer.net/api/live"

// ErrNoAPIKey is returned by Fetch when the Gateway has no access key.
var ErrNoAPIKey = errors.New("no apilayer access key")

// Gateway is a paytracker.RateGateway backed by apilayer.
type Gateway struct {
	URL       string // endpoint, DefaultURL if empty
	APIKey    string
	Reference string       // source currency of the quotes, paytracker.DefaultReference if empty
	Client    *http.Client // http.DefaultClient if nil
}

// New returns a Gateway on the default endpoint.
func New(apiKey string) *Gateway {
	return &Gateway{APIKey: apiKey}
}

// Fetch returns the current rates, keyed by plain currency code.
//
//	{
//	  "success": true,
//	  "source": "USD",
//	  "quotes": {
//	    "USDEUR": 0.8117,
//	    "USDCZK": 20.561899
//	  }
//	}
//
// Quote keys lose their reference prefix: "USDEUR" becomes "EUR".
func (g *Gateway) Fetch(ctx context.Context) (paytracker.RateTable, error) {
	if g.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	addr, err := g.addr()
	if err != nil {
		return nil, err
	}

	var payload any
	if err := jwget(ctx, g.client(), addr, &payload); err != nil {
		return nil, err
	}
	if err := apiError(payload); err != nil {
		return nil, err
	}
	if err := checkSource(g.reference(), payload); err != nil {
		return nil, err
	}

	jval, err := jsonpath.Get("$.quotes", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paytracker.ErrUnavailable, err)
	}
	quotes, ok := jval.(map[string]any)
	if !ok || len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no quotes in response", paytracker.ErrUnavailable)
	}
	return parseQuotes(g.reference(), quotes)
}

func (g *Gateway) addr() (string, error) {
	base := g.URL
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid apilayer url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("access_key", g.APIKey)
	if ref := g.reference(); ref != paytracker.DefaultReference {
		// Quotes are USD based unless asked otherwise.
		q.Set("source", ref)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *Gateway) client() *http.Client {
	if g.Client == nil {
		return http.DefaultClient
	}
	return g.Client
}

func (g *Gateway) reference() string {
	if g.Reference == "" {
		return paytracker.DefaultReference
	}
	return g.Reference
}

// apiError returns the error reported in an unsuccessful payload.
//
//	{"success": false, "error": {"code": 101, "info": "You have not supplied a valid API Access Key."}}
func apiError(payload any) error {
	obj, ok := payload.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: unexpected response", paytracker.ErrUnavailable)
	}
	if success, ok := obj["success"].(bool); !ok || success {
		return nil
	}
	info, err := jsonpath.Get("$.error.info", payload)
	if err != nil {
		return fmt.Errorf("%w: request failed", paytracker.ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", paytracker.ErrUnavailable, info)
}

// checkSource rejects quotes that are not based on reference.
//
// A payload without "source" is trusted.
func checkSource(reference string, payload any) error {
	jval, err := jsonpath.Get("$.source", payload)
	if err != nil {
		return nil
	}
	if source, ok := jval.(string); ok && source != reference {
		return fmt.Errorf("%w: quotes are based on %s, want %s", paytracker.ErrUnavailable, source, reference)
	}
	return nil
}

// parseQuotes converts raw quotes into a rate table.
//
// Values are json.Number so that no rate goes through a float.
func parseQuotes(reference string, quotes map[string]any) (paytracker.RateTable, error) {
	rates := make(paytracker.RateTable, len(quotes))
	var errs error
	for key, v := range quotes {
		code := strings.TrimPrefix(key, reference)
		if code == "" {
			// "USDUSD" when the source is USD.
			code = reference
		}
		rate, err := toDecimal(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid quote %s: %w", key, err))
			continue
		}
		rates[code] = rate
	}
	if len(rates) == 0 {
		return nil, errors.Join(paytracker.ErrUnavailable, errs)
	}
	if errs != nil {
		log.Printf("some quotes were ignored: %v", errs)
	}
	return rates, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}
