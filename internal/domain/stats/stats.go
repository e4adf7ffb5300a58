package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary 為一組數值樣本的描述統計。
type Summary struct {
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
	Count  int
}

// Summarize 計算平均、極值與母體標準差 sqrt(mean((x-avg)^2))；空樣本全部回傳 0。
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Summary{
		Mean:   mean,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		StdDev: std,
		Count:  len(values),
	}
}

// Min 回傳最小值，空樣本為 0。
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Max 回傳最大值，空樣本為 0。
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Bounds 回傳 (min, max)，供圖表軸線縮放使用。
func Bounds(values []float64) (float64, float64) {
	return Min(values), Max(values)
}
