// Package momentum computes the logarithmic acceleration of a token price
//
//	accel_log = ln( (p_now * p_minus7) / p_minus3^2 )
//
// from three samples taken now, 3 days ago and 7 days ago. A positive value
// means the last three days moved faster (in log terms) than the four days
// before them.
package momentum

import "math"

// Compute returns the momentum metric and true, or false when the inputs
// fall outside the logarithm's domain: minus3 <= 0, a numerator
// now*minus7 <= 0, or any NaN/Inf input. The value is summed in log space
// so extreme magnitudes neither overflow nor underflow.
func Compute(now, minus3, minus7 float64) (float64, bool) {
	for _, v := range [...]float64{now, minus3, minus7} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
	}
	if minus3 <= 0 || now == 0 || minus7 == 0 {
		return 0, false
	}
	// Sign of the numerator without forming the product.
	if math.Signbit(now) != math.Signbit(minus7) {
		return 0, false
	}

	v := math.Log(math.Abs(now)) + math.Log(math.Abs(minus7)) - 2*math.Log(minus3)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
