package indicator

import "math"

// CalculateEMA computes an exponential moving average over prices.
// The first window-1 entries are NaN; the value at index window-1 is
// seeded with the simple average of the first window prices, and each
// subsequent value follows ema[t] = price[t]*alpha + ema[t-1]*(1-alpha)
// with alpha = 2/(window+1). The value at index t depends only on
// indices <= t.
func CalculateEMA(prices []float64, window int) []float64 {
	if window <= 0 || len(prices) < window {
		return nil
	}
	ema := make([]float64, len(prices))
	for i := 0; i < window-1; i++ {
		ema[i] = math.NaN()
	}
	var sum float64
	for i := 0; i < window; i++ {
		sum += prices[i]
	}
	ema[window-1] = sum / float64(window)
	alpha := 2.0 / float64(window+1)
	for i := window; i < len(prices); i++ {
		ema[i] = prices[i]*alpha + ema[i-1]*(1-alpha)
	}
	return ema
}
