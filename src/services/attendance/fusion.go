package attendance

import (
	"fmt"
	"math"
)

// Fuse blends observed into existing with the given weight and renormalizes the
// result to unit length. It performs no confidence gating.
func Fuse(existing, observed []float64, weight float64) ([]float64, error) {
	if len(existing) == 0 || len(observed) == 0 {
		return nil, &NumericError{Err: fmt.Errorf("empty signature")}
	}
	if len(existing) != len(observed) {
		return nil, &NumericError{Err: fmt.Errorf("dimension mismatch: %d != %d", len(existing), len(observed))}
	}
	if !(weight > 0 && weight <= 1) {
		return nil, &NumericError{Err: fmt.Errorf("weight %v outside (0,1]", weight)}
	}

	blended := make([]float64, len(existing))
	var sum float64
	for i := range existing {
		blended[i] = existing[i]*(1-weight) + observed[i]*weight
		sum += blended[i] * blended[i]
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, &NumericError{Err: ErrDegenerateSignature}
	}
	for i := range blended {
		blended[i] /= norm
	}
	return blended, nil
}
