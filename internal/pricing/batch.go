package pricing

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PriceBatch prices every contract concurrently and returns results in input order.
// workers <= 0 uses GOMAXPROCS. The first failing contract cancels the rest and its
// error is returned with the contract index; partial results are never returned.
func PriceBatch(ctx context.Context, inputs []MarketInputs, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Result, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := Price(in)
			if err != nil {
				return fmt.Errorf("contract %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
