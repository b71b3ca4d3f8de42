package data

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// synthDataProvider generates a plausible spot for offline runs. The price is a
// short lognormal walk seeded from the ticker, so a given ticker always prices
// the same.
type synthDataProvider struct {
	seed      int64
	secondary Provider
}

// NewSyntheticProvider returns a synthetic provider. When the ticker is empty
// the request goes to secondary.
func NewSyntheticProvider(seed int64, secondary Provider) Provider {
	return &synthDataProvider{seed: seed, secondary: secondary}
}

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return synthDataProv.secondary
}

func (synthDataProv *synthDataProvider) GetSpot(ctx context.Context, underlying string) (float64, error) {
	underlying = strings.ToUpper(strings.TrimSpace(underlying))
	if underlying == "" {
		return delegate(ctx, synthDataProv, underlying, nil)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(underlying))
	rng := rand.New(rand.NewSource(synthDataProv.seed ^ int64(h.Sum64())))

	price := 100.0 + float64(rng.Intn(200))
	for i := 0; i < 20; i++ {
		price *= math.Exp(rng.NormFloat64() * 0.01)
	}
	return math.Round(price*100) / 100, nil
}
