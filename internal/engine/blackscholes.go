package engine

import "math"

// Call prices a European call with the Black-Scholes closed form. At the
// degenerate boundary (T<=0 or sigma<=0) it returns intrinsic value instead
// of dividing by zero.
func Call(s, k, t, r, sigma float64) float64 {
	if t <= 0 || sigma <= 0 {
		return math.Max(s-k, 0)
	}
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	price := s*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2)
	return math.Max(price, 0)
}

// Put prices a European put; same intrinsic-value fallback as Call.
func Put(s, k, t, r, sigma float64) float64 {
	if t <= 0 || sigma <= 0 {
		return math.Max(k-s, 0)
	}
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	price := k*math.Exp(-r*t)*normCDF(-d2) - s*normCDF(-d1)
	return math.Max(price, 0)
}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
