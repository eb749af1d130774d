package testutil

import "math"

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// RMS returns the root mean square of data, or 0 for an empty slice.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}

// EstimateFrequency estimates the fundamental of a periodic signal from
// its rising zero crossings, interpolating each crossing linearly.
// It returns 0 when fewer than two crossings are found.
func EstimateFrequency(data []float64, sampleRate float64) float64 {
	first, last := -1.0, -1.0
	crossings := 0
	for i := 1; i < len(data); i++ {
		a, b := data[i-1], data[i]
		if a < 0 && b >= 0 {
			pos := float64(i-1) + a/(a-b)
			if first < 0 {
				first = pos
			}
			last = pos
			crossings++
		}
	}
	if crossings < 2 {
		return 0
	}
	return float64(crossings-1) * sampleRate / (last - first)
}
