package chart

import "math"

// LinearScale maps a continuous domain onto a continuous range
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// Map projects v; a degenerate domain yields NaN
func (s LinearScale) Map(v float64) float64 {
	span := s.D1 - s.D0
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return math.NaN()
	}
	return s.R0 + (v-s.D0)/span*(s.R1-s.R0)
}

// BandScale places ordered keys on evenly spaced bands
type BandScale struct {
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale spreads keys over [start, start+extent)
// The step collapses to 1 row when 2 rows per band do not fit
func NewBandScale(keys []string, start, extent float64) BandScale {
	b := BandScale{index: make(map[string]int, len(keys)), start: start}
	for i, k := range keys {
		b.index[k] = i
	}
	n := float64(len(keys))
	if n == 0 {
		b.step = math.NaN()
		b.bandwidth = math.NaN()
		return b
	}
	switch {
	case extent >= 2*n-1:
		b.step = 2
	default:
		b.step = math.Floor(extent / n)
	}
	b.bandwidth = math.Min(b.step, 1)
	return b
}

// Position returns the row of a key
func (b BandScale) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return math.NaN(), false
	}
	return b.start + float64(i)*b.step, true
}

// Bandwidth returns the bar height in rows, < 1 or NaN when bars do not fit
func (b BandScale) Bandwidth() float64 {
	return b.bandwidth
}

// Step returns the distance between consecutive bands
func (b BandScale) Step() float64 {
	return b.step
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Ticks returns integer tick values in [0, max] at a 1/2/5 × 10^k step
// targeting roughly want ticks
func Ticks(maxValue float64, want int) []int {
	if !finite(maxValue) || maxValue <= 0 || want < 1 {
		return []int{0}
	}
	raw := maxValue / float64(want)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 5, 10} {
		step = m * mag
		if step >= raw {
			break
		}
	}
	istep := int(math.Max(1, math.Round(step)))

	ticks := make([]int, 0, want+2)
	for v := 0; float64(v) <= maxValue; v += istep {
		ticks = append(ticks, v)
	}
	return ticks
}
