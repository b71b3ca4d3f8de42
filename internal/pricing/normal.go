package pricing

import "gonum.org/v1/gonum/stat/distuv"

// normCDF is the standard normal cumulative distribution function.
// distuv evaluates it through math.Erfc, which keeps precision in the far tails.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
