package data

import (
	"context"
	"fmt"
)

// staticDataProvider returns a fixed, configured spot.
type staticDataProvider struct {
	spot      float64
	secondary Provider
}

func NewStaticProvider(spot float64, secondary Provider) Provider {
	return &staticDataProvider{spot: spot, secondary: secondary}
}

func (staticDataProv *staticDataProvider) Secondary() Provider {
	return staticDataProv.secondary
}

// GetSpot returns the configured spot regardless of ticker. A non-positive spot
// is treated as unset and the request is delegated.
func (staticDataProv *staticDataProvider) GetSpot(ctx context.Context, underlying string) (float64, error) {
	if staticDataProv.spot > 0 {
		return staticDataProv.spot, nil
	}
	return delegate(ctx, staticDataProv, underlying,
		fmt.Errorf("%w: static spot not configured", ErrNoSpot))
}
