// Package consensus implements the variable-side equality rules (ADMM and
// TWA) that an objectivegraph.Graph binds once at construction.
package consensus

import (
	"gonum.org/v1/gonum/floats"

	"github.com/CausalGo/objectivegraph/weight"
)

// Weighted pairs a message value with its confidence tag. It is the
// element type of both the incoming-message slice a Rule consumes and the
// exchange buffer a factor minimizer fills.
type Weighted struct {
	Value  float64
	Weight weight.MessageWeight
}

// Rule resolves the incoming messages-to-variable from every enabled
// incident edge into a single broadcast (newZ, newWeight). Callers
// guarantee incoming is non-empty; an empty enabled-edge set is handled by
// the caller as a no-op, not by Rule.
type Rule interface {
	Resolve(incoming []Weighted) Weighted
}

// ADMM averages every incoming value and always returns weight.Standard.
type ADMM struct{}

// Resolve implements Rule.
func (ADMM) Resolve(incoming []Weighted) Weighted {
	values := make([]float64, len(incoming))
	for i, in := range incoming {
		values[i] = in.Value
	}
	return Weighted{Value: floats.Sum(values) / float64(len(values)), Weight: weight.Standard}
}

// TWA implements the Three-Weight Algorithm's short-circuiting scan:
// the first Infinite edge encountered wins outright; otherwise the mean is
// taken over non-Zero edges, falling back to the mean over every edge when
// all incoming weights are Zero.
type TWA struct{}

// Resolve implements Rule.
func (TWA) Resolve(incoming []Weighted) Weighted {
	var nzSum, allSum float64
	var nzCount int

	for _, in := range incoming {
		if in.Weight == weight.Infinite {
			// Infinite certainty wins on first sight; conflicting Infinite
			// edges are a client contract violation (see Graph's debug
			// assertion mode) and are not detected here.
			return in
		}
		allSum += in.Value
		if in.Weight != weight.Zero {
			nzSum += in.Value
			nzCount++
		}
	}

	if nzCount > 0 {
		return Weighted{Value: nzSum / float64(nzCount), Weight: weight.Standard}
	}
	return Weighted{Value: allSum / float64(len(incoming)), Weight: weight.Standard}
}
