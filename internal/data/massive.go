// Massive-backed Provider: reads the previous-session close of an underlying
// from the Massive aggregates API over plain HTTP.
//
// Rate-limit (429) and server (5xx) responses are retried with exponential
// backoff; any other non-200 status fails immediately. When a request cannot
// be served the call is delegated to the secondary provider, if any.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// MaxElapsed bounds the total time spent retrying one request.
	MaxElapsed time.Duration

	// newBackOff builds the retry schedule; tests swap in a constant one.
	newBackOff func() backoff.BackOff

	// secondary is an optional fallback provider.
	secondary Provider
}

// massivePrevCloseResp models the previous-close aggregate response.
type massivePrevCloseResp struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Ticker string  `json:"T"`
		Open   float64 `json:"o"`
		High   float64 `json:"h"`
		Low    float64 `json:"l"`
		Close  float64 `json:"c"`
		Vol    float64 `json:"v"`
		Time   int64   `json:"t"`
	} `json:"results"`
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// It initializes an HTTP client with sensible defaults for:
//   - timeouts
//   - connection pooling
//   - HTTP/2 support
//   - gzip decompression
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL:    "https://api.massive.com",
		MaxElapsed: 2 * time.Minute,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetSpot returns the previous-session close for underlying.
func (massiveDataProv *massiveDataProvider) GetSpot(ctx context.Context, underlying string) (float64, error) {
	underlying = strings.ToUpper(strings.TrimSpace(underlying))

	spot, err := massiveDataProv.fetchPrevClose(ctx, underlying)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		logger.Errorf("massive spot for %s failed: %v", underlying, err)
		return delegate(ctx, massiveDataProv, underlying, err)
	}

	logger.Debugf("massive spot %s=%.4f", underlying, spot)
	return spot, nil
}

func (massiveDataProv *massiveDataProvider) fetchPrevClose(ctx context.Context, underlying string) (float64, error) {
	if underlying == "" {
		return 0, fmt.Errorf("%w: empty ticker", ErrNoSpot)
	}

	endpoint := fmt.Sprintf(
		"%s/v2/aggs/ticker/%s/prev?adjusted=true",
		massiveDataProv.BaseURL,
		url.PathEscape(underlying),
	)

	body, err := backoff.Retry(
		ctx,
		func() (massivePrevCloseResp, error) {
			return massiveDataProv.getPrevClose(ctx, endpoint)
		},
		backoff.WithBackOff(massiveDataProv.newBackOff()),
		backoff.WithMaxElapsedTime(massiveDataProv.MaxElapsed),
	)
	if err != nil {
		return 0, fmt.Errorf("massive api request failed: %w", err)
	}

	if len(body.Results) == 0 || body.Results[0].Close <= 0 {
		return 0, fmt.Errorf("%w: massive returned no close for %s", ErrNoSpot, underlying)
	}
	return body.Results[0].Close, nil
}

// getPrevClose performs one request. Errors wrapped in backoff.Permanent are not retried.
func (massiveDataProv *massiveDataProvider) getPrevClose(ctx context.Context, endpoint string) (massivePrevCloseResp, error) {
	var body massivePrevCloseResp

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return body, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+massiveDataProv.APIKey)

	logger.Tracef("GET %s", endpoint)
	resp, err := massiveDataProv.Client.Do(req)
	if err != nil {
		return body, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		logger.Infof("rate limit hit, backing off")
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			return body, backoff.RetryAfter(secs)
		}
		return body, fmt.Errorf("massive status=%d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return body, fmt.Errorf("massive status=%d", resp.StatusCode)
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return body, backoff.Permanent(fmt.Errorf(
			"massive status=%d body=%s",
			resp.StatusCode,
			string(bodyBytes),
		))
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return body, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return body, nil
}
