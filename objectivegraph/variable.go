package objectivegraph

import (
	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/weight"
)

// variableState is VariableData from the spec: an ordered list of incident
// edges, a lazily-rebuilt enabled subset, and the current/initial value.
type variableState struct {
	edges        []EdgeRef
	enabledEdges []EdgeRef

	enabledNeedsUpdate bool

	value    float64
	hasValue bool // false until the variable's first equality sweep

	initialValue  float64
	initialWeight weight.MessageWeight

	// scratch is the reusable exchange buffer for the variable sweep,
	// resized (never reallocated below capacity) each time runVariable
	// evaluates the equality rule over enabledEdges.
	scratch []consensus.Weighted
}

func newVariableState(initialValue float64, initialWeight weight.MessageWeight) variableState {
	return variableState{
		value:         initialValue,
		initialValue:  initialValue,
		initialWeight: initialWeight,
	}
}

// currentValue returns the value meaningful for edge resets and queries:
// the initial value before the first equality sweep, the live value after.
func (v *variableState) currentValue() float64 {
	if !v.hasValue {
		return v.initialValue
	}
	return v.value
}

// rebuildEnabledEdges recomputes enabledEdges from the full incident edge
// list, filtering on each edge's enabled flag. Called only when
// enabledNeedsUpdate is set, from the variable sweep and from
// enableFactor.
func (v *variableState) rebuildEnabledEdges(edges []edgeState) {
	v.enabledEdges = v.enabledEdges[:0]
	for _, ref := range v.edges {
		if edges[ref].enabled {
			v.enabledEdges = append(v.enabledEdges, ref)
		}
	}
	v.enabledNeedsUpdate = false
}

func (v *variableState) resetForReinit() {
	v.value = v.initialValue
	v.hasValue = false
	v.enabledEdges = v.enabledEdges[:0]
	for _, ref := range v.edges {
		v.enabledEdges = append(v.enabledEdges, ref)
	}
	v.enabledNeedsUpdate = false
}
