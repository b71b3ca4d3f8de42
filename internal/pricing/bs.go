package pricing

import (
	"math"
)

// daysPerYear converts annual theta into per-calendar-day decay.
const daysPerYear = 365.0

// vegaScale expresses vega per one volatility point (0.20 -> 0.21).
const vegaScale = 100.0

// MarketInputs holds the five scalar parameters of a European option.
type MarketInputs struct {
	S     float64 `json:"S"`     // spot price of the underlying
	K     float64 `json:"K"`     // strike price
	T     float64 `json:"T"`     // time to expiry in years
	R     float64 `json:"r"`     // risk-free rate, continuously compounded
	Sigma float64 `json:"sigma"` // annualized volatility, as a decimal
}

// Result is the call/put price and Greeks produced from one evaluation of d1/d2.
type Result struct {
	CallPrice float64 `json:"call_price"`
	PutPrice  float64 `json:"put_price"`
	DeltaCall float64 `json:"delta_call"`
	DeltaPut  float64 `json:"delta_put"`
	Gamma     float64 `json:"gamma"`
	Vega      float64 `json:"vega"`
	ThetaCall float64 `json:"theta_call"`
	ThetaPut  float64 `json:"theta_put"`
}

// Price calculates the Black-Scholes price and Greeks of a European call and put.
//
// Parameters:
//   - in: spot, strike, time to expiry (years), risk-free rate and volatility
//
// Returns:
//
//	A Result with every field derived from the same d1/d2. Vega is expressed per
//	one volatility point and theta per calendar day.
//
// Inputs outside the model's domain (S, K, T or sigma not strictly positive, or a
// non-finite rate) are rejected with a *DomainError; no value is ever clamped or
// replaced by an intrinsic fallback.
func Price(in MarketInputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	sqrtT := math.Sqrt(in.T)
	volSqrtT := in.Sigma * sqrtT

	d1 := (math.Log(in.S/in.K) + (in.R+0.5*in.Sigma*in.Sigma)*in.T) / volSqrtT
	d2 := d1 - volSqrtT

	discK := in.K * math.Exp(-in.R*in.T)
	nd1 := normCDF(d1)
	nd2 := normCDF(d2)
	pdf := normPDF(d1)

	// time decay shared by call and put
	decay := -in.S * pdf * in.Sigma / (2 * sqrtT)

	return Result{
		CallPrice: in.S*nd1 - discK*nd2,
		PutPrice:  discK*normCDF(-d2) - in.S*normCDF(-d1),
		DeltaCall: nd1,
		DeltaPut:  nd1 - 1,
		Gamma:     pdf / (in.S * volSqrtT),
		Vega:      in.S * pdf * sqrtT / vegaScale,
		ThetaCall: (decay - in.R*discK*nd2) / daysPerYear,
		ThetaPut:  (decay + in.R*discK*normCDF(-d2)) / daysPerYear,
	}, nil
}

// Validate reports the first input that lies outside the model's domain.
func (in MarketInputs) Validate() error {
	switch {
	case !(in.S > 0) || math.IsInf(in.S, 0):
		return &DomainError{Field: "S", Value: in.S}
	case !(in.K > 0) || math.IsInf(in.K, 0):
		return &DomainError{Field: "K", Value: in.K}
	case !(in.T > 0) || math.IsInf(in.T, 0):
		return &DomainError{Field: "T", Value: in.T}
	case !(in.Sigma > 0) || math.IsInf(in.Sigma, 0):
		return &DomainError{Field: "sigma", Value: in.Sigma}
	case math.IsNaN(in.R) || math.IsInf(in.R, 0):
		return &DomainError{Field: "r", Value: in.R}
	}
	return nil
}

// Forward returns S - K*exp(-r*T), the right-hand side of put-call parity.
func (in MarketInputs) Forward() float64 {
	return in.S - in.K*math.Exp(-in.R*in.T)
}

// ParityGap returns how far the result deviates from put-call parity for in.
// It is zero up to floating-point rounding for any result produced by Price.
func (res Result) ParityGap(in MarketInputs) float64 {
	return (res.CallPrice - res.PutPrice) - in.Forward()
}

// Premium returns the option price for the given side.
func (res Result) Premium(optType OptionType) float64 {
	if optType == Put {
		return res.PutPrice
	}
	return res.CallPrice
}

// Delta returns the delta for the given side.
func (res Result) Delta(optType OptionType) float64 {
	if optType == Put {
		return res.DeltaPut
	}
	return res.DeltaCall
}

// Theta returns the per-day theta for the given side.
func (res Result) Theta(optType OptionType) float64 {
	if optType == Put {
		return res.ThetaPut
	}
	return res.ThetaCall
}
