package indicator

import "math"

// CalculateMACD computes the fast-minus-slow EMA difference and its
// signal-period EMA smoothing ("signal line"). Entries are NaN until the
// slow EMA is seeded; the signal line needs a further signal-1 values of
// valid MACD before it is seeded. Returns nil slices when prices are too
// short for the slow window.
func CalculateMACD(prices []float64, fast, slow, signal int) (macd, signalLine []float64) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow || len(prices) < slow {
		return nil, nil
	}
	fastEMA := CalculateEMA(prices, fast)
	slowEMA := CalculateEMA(prices, slow)

	macd = make([]float64, len(prices))
	for i := range prices {
		if i < slow-1 {
			macd[i] = math.NaN()
			continue
		}
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = make([]float64, len(prices))
	for i := range signalLine {
		signalLine[i] = math.NaN()
	}
	// Seed the signal line with the simple average of the first signal
	// valid MACD values, then apply the EMA recurrence.
	seedIdx := slow - 1 + signal - 1
	if seedIdx >= len(prices) {
		return macd, signalLine
	}
	var sum float64
	for i := slow - 1; i <= seedIdx; i++ {
		sum += macd[i]
	}
	signalLine[seedIdx] = sum / float64(signal)
	alpha := 2.0 / float64(signal+1)
	for i := seedIdx + 1; i < len(prices); i++ {
		signalLine[i] = macd[i]*alpha + signalLine[i-1]*(1-alpha)
	}
	return macd, signalLine
}
