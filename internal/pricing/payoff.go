package pricing

import (
	"iter"
	"math"
	"slices"
)

// PayoffPoint is the profit/loss at expiry of a long call and a long put
// for one underlying price.
type PayoffPoint struct {
	Spot    float64 `json:"spot"`
	CallPnL float64 `json:"call_pnl"`
	PutPnL  float64 `json:"put_pnl"`
}

// Payoff returns a lazy sequence of n points linearly spaced from sMin to sMax
// inclusive. Each point is the intrinsic value at expiry minus the premium paid.
//
// The sequence holds no state: ranging over it again recomputes every point.
// n == 1 yields sMin only and n <= 0 yields nothing. The last point is exactly sMax.
func Payoff(sMin, sMax float64, n int, K, callPremium, putPremium float64) iter.Seq[PayoffPoint] {
	return func(yield func(PayoffPoint) bool) {
		if n <= 0 {
			return
		}
		step := 0.0
		if n > 1 {
			step = (sMax - sMin) / float64(n-1)
		}
		for i := 0; i < n; i++ {
			s := sMin + float64(i)*step
			if i == n-1 && n > 1 {
				s = sMax
			}
			p := PayoffPoint{
				Spot:    s,
				CallPnL: math.Max(s-K, 0) - callPremium,
				PutPnL:  math.Max(K-s, 0) - putPremium,
			}
			if !yield(p) {
				return
			}
		}
	}
}

// PayoffCurve collects Payoff into a slice.
func PayoffCurve(sMin, sMax float64, n int, K, callPremium, putPremium float64) []PayoffPoint {
	return slices.Collect(Payoff(sMin, sMax, n, K, callPremium, putPremium))
}

// BreakEvens returns the expiry spots where the call and put P&L cross zero.
func BreakEvens(K, callPremium, putPremium float64) (call, put float64) {
	return K + callPremium, K - putPremium
}
