package objectivegraph

import (
	"math"

	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/weight"
)

// edgeState is the per-edge exchange unit: EdgeData from the spec. It is
// bound to exactly one variable and one factor for its lifetime.
type edgeState struct {
	variable VariableRef
	factor   FactorRef

	x, z, u float64
	// prevX holds x as it stood immediately before the most recent
	// factor-side absorption overwrote it. The dual update in
	// variable-side absorption is defined against this value, not the
	// freshly written x: the edge publishes its new x immediately (so a
	// messageToVariable query right after a factor-side absorb already
	// observes it) but the residual the dual accumulator reacts to is
	// one step behind. See TestEdgeArithmeticFixture in edge_test.go for
	// the worked sequence this resolves.
	prevX float64

	weightToLeft  weight.MessageWeight
	weightToRight weight.MessageWeight

	enabled bool

	oldMsg     float64
	hasOldMsg  bool
	msgDiff    float64
	hasMsgDiff bool
}

func newEdgeState(v VariableRef, initialValue float64, initialWeight weight.MessageWeight) edgeState {
	return edgeState{
		variable:      v,
		x:             initialValue,
		z:             initialValue,
		prevX:         initialValue,
		weightToLeft:  initialWeight,
		weightToRight: weight.Standard,
		enabled:       true,
	}
}

// messageToFactor returns n = z - u, paired with weightToLeft.
func (e *edgeState) messageToFactor() consensus.Weighted {
	return consensus.Weighted{Value: e.z - e.u, Weight: e.weightToLeft}
}

// messageToVariable returns m = x + u, paired with weightToRight.
func (e *edgeState) messageToVariable() consensus.Weighted {
	return consensus.Weighted{Value: e.x + e.u, Weight: e.weightToRight}
}

// absorbFactorSide applies the result a factor's minimizer wrote for this
// edge: x := value, weightToRight := weight, then samples msgDiff against
// the message-to-factor at this consistent point, before weightToRight can
// reset u.
func (e *edgeState) absorbFactorSide(result consensus.Weighted, admm bool) {
	e.prevX = e.x
	e.x = result.Value
	e.weightToRight = clampWeight(result.Weight, admm)

	n := e.z - e.u
	if e.hasOldMsg {
		e.msgDiff = math.Abs(n - e.oldMsg)
		e.hasMsgDiff = true
	}
	e.oldMsg = n
	e.hasOldMsg = true

	if e.weightToRight == weight.Infinite {
		e.u = 0
	}
}

// absorbVariableSide applies the variable's equality-rule broadcast:
// z := newZ, weightToLeft := newWeight, then either resets u (on Infinite)
// or advances the dual accumulator against prevX.
func (e *edgeState) absorbVariableSide(result consensus.Weighted, alpha float64, admm bool) {
	e.z = result.Value
	e.weightToLeft = clampWeight(result.Weight, admm)

	if e.weightToLeft == weight.Infinite {
		e.u = 0
	} else {
		e.u += alpha * (e.prevX - e.z)
	}
}

// resetForEnable restores an edge reactivated by SetFactorEnabled to
// (value=currentValue, weight=Standard) with u/oldMsg/msgDiff cleared, per
// spec.md §4.5.
func (e *edgeState) resetForEnable(currentValue float64) {
	e.x = currentValue
	e.z = currentValue
	e.prevX = currentValue
	e.u = 0
	e.weightToLeft = weight.Standard
	e.weightToRight = weight.Standard
	e.hasOldMsg = false
	e.oldMsg = 0
	e.hasMsgDiff = false
	e.msgDiff = 0
	e.enabled = true
}

// resetForReinit restores construction-time defaults: the owning
// variable's initial (value, weight) on both sides of the edge.
func (e *edgeState) resetForReinit(initialValue float64, initialWeight weight.MessageWeight) {
	e.x = initialValue
	e.z = initialValue
	e.prevX = initialValue
	e.u = 0
	e.weightToLeft = initialWeight
	e.weightToRight = weight.Standard
	e.hasOldMsg = false
	e.oldMsg = 0
	e.hasMsgDiff = false
	e.msgDiff = 0
	e.enabled = true
}

func clampWeight(w weight.MessageWeight, admm bool) weight.MessageWeight {
	if admm {
		return weight.Standard
	}
	return w
}
