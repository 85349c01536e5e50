package recommend

import (
	"fmt"
	"math"
)

// zeroMeanEpsilon replaces a zero column mean during normalization.
const zeroMeanEpsilon = 1e-9

// DeriveWeights computes weights from the trailing window by ideal-point deviation.
// An empty window yields defaults. A window that produces non-finite weights yields
// defaults together with ErrDegenerateWindow.
func DeriveWeights(window []MetricVector, rho float64, defaults WeightVector) (WeightVector, error) {
	if len(window) == 0 {
		return defaults, nil
	}
	for i, row := range window {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return defaults, fmt.Errorf("%w: row %d %s = %v", ErrDegenerateWindow, i, MetricNames[j], v)
			}
		}
	}
	rows := float64(len(window))

	// column means
	var mean [NumMetrics]float64
	for _, row := range window {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= rows
		if mean[j] == 0 {
			mean[j] = zeroMeanEpsilon
		}
	}

	normalized := make([]MetricVector, len(window))
	var ideal [NumMetrics]float64
	for j := range ideal {
		ideal[j] = math.Inf(-1)
	}
	for i, row := range window {
		for j, v := range row {
			normalized[i][j] = v / mean[j]
			if normalized[i][j] > ideal[j] {
				ideal[j] = normalized[i][j]
			}
		}
	}

	deviation := make([]MetricVector, len(window))
	minDev, maxDev := math.Inf(1), math.Inf(-1)
	for i := range normalized {
		for j := range normalized[i] {
			d := math.Abs(normalized[i][j] - ideal[j])
			deviation[i][j] = d
			minDev = math.Min(minDev, d)
			maxDev = math.Max(maxDev, d)
		}
	}

	var raw WeightVector
	for i := range deviation {
		for j, d := range deviation[i] {
			m := 1.0
			// every entry sits on its ideal when maxDev is zero
			if maxDev > 0 {
				m = (minDev + rho*maxDev) / (d + rho*maxDev)
			}
			raw[j] += m / rows
		}
	}

	sum := raw.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return defaults, fmt.Errorf("%w: weight sum %v", ErrDegenerateWindow, sum)
	}
	var w WeightVector
	for j := range raw {
		w[j] = raw[j] / sum
		if w[j] < 0 || math.IsNaN(w[j]) || math.IsInf(w[j], 0) {
			return defaults, fmt.Errorf("%w: weight %s = %v", ErrDegenerateWindow, MetricNames[j], w[j])
		}
	}
	return w, nil
}
