// Package data provides spot-price providers that feed the underlying price
// into the pricing engine. Providers can be chained: when one cannot answer,
// the request is delegated to its secondary.
package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoSpot is returned when no provider in a chain has a price for the ticker.
var ErrNoSpot = errors.New("no spot price available")

// Provider supplies the current price of an underlying.
type Provider interface {
	Secondary() Provider
	GetSpot(ctx context.Context, underlying string) (float64, error)
}

// Options selects and configures a provider chain.
type Options struct {
	Kind    string // "static", "synthetic", "local" or "massive"
	APIKey  string // massive only; falls back to MASSIVE_API_KEY
	DataDir string // local only; directory holding spots.csv

	// Spot is the static provider's price. For the other kinds it is chained
	// as the last fallback only when positive; pass 0 unless the user gave a
	// spot, so a failed lookup surfaces instead of pricing at a default.
	Spot float64
}

// NewProvider builds the provider chain named by opts.Kind.
func NewProvider(opts Options) (Provider, error) {
	var fallback Provider
	if opts.Spot > 0 {
		fallback = NewStaticProvider(opts.Spot, nil)
	}

	switch strings.ToLower(opts.Kind) {
	case "", "static":
		return NewStaticProvider(opts.Spot, nil), nil
	case "synthetic":
		return NewSyntheticProvider(0, fallback), nil
	case "local":
		return NewLocalFileDataProvider(opts.DataDir, fallback), nil
	case "massive":
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("MASSIVE_API_KEY")
		}
		prov := NewMassiveDataProvider(apiKey)
		prov.secondary = fallback
		return prov, nil
	}
	return nil, fmt.Errorf("unknown provider %q", opts.Kind)
}

// delegate asks prov's secondary for the spot, or wraps cause when there is none.
func delegate(ctx context.Context, prov Provider, underlying string, cause error) (float64, error) {
	if sec := prov.Secondary(); sec != nil {
		return sec.GetSpot(ctx, underlying)
	}
	if cause == nil {
		cause = ErrNoSpot
	}
	return 0, cause
}
