package nnet

import "math"

// Softmax normalizes raw scores into a probability distribution. The max
// score is subtracted before exponentiation so large scores cannot
// overflow. Empty input yields empty output
func Softmax(scores []float32) []float32 {
	if len(scores) == 0 {
		return nil
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	exps := make([]float64, len(scores))
	var total float64
	for i, s := range scores {
		exps[i] = math.Exp(float64(s - maxScore))
		total += exps[i]
	}

	out := make([]float32, len(scores))
	for i, e := range exps {
		out[i] = float32(e / total)
	}
	return out
}

// ArgMax returns the index of the largest value, lowest index on ties.
// Returns -1 for empty input
func ArgMax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
