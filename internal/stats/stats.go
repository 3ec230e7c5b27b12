// Package stats provides the shared statistical primitives for the
// correlation engine: Pearson correlation, lag autocorrelation, trend
// strength, and data-quality scoring over daily aggregates.
package stats

import "math"

// Pearson computes the Pearson correlation coefficient of two equally
// sized series. Mismatched lengths, empty input, and zero-variance
// series all yield a defined 0, never NaN.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// LagCorrelation computes the lag-k autocorrelation of a series as the
// Pearson correlation between the series and its k-shifted copy,
// truncating the non-overlapping tail. Series shorter than the lag
// yield 0.
func LagCorrelation(series []float64, lag int) float64 {
	if lag <= 0 || len(series) <= lag {
		return 0
	}
	return Pearson(series[:len(series)-lag], series[lag:])
}

// TrendStrength is the absolute Pearson correlation between the series
// and its index, i.e. how close the series is to a monotone trend.
func TrendStrength(series []float64) float64 {
	idx := make([]float64, len(series))
	for i := range idx {
		idx[i] = float64(i)
	}
	return math.Abs(Pearson(idx, series))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
