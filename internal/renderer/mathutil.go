package renderer

import (
	"golang.org/x/exp/constraints"
)

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
