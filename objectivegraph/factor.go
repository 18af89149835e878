package objectivegraph

import "github.com/CausalGo/objectivegraph/consensus"

// Minimizer is a factor's opaque local objective minimizer: given a
// mutable buffer of weighted values prefilled with incoming
// messages-to-factor, in the edge order declared at CreateFactor, it
// writes the outgoing (value, weight) into each slot. Minimizers must be
// pure with respect to any graph state other than buf: the core relies on
// this to parallelize the factor sweep.
type Minimizer func(buf []consensus.Weighted)

// factorState is FactorData from the spec: an ordered edge list, the
// opaque minimizer, an enabled flag, and the reusable exchange buffer
// (WeightedValueExchange) that marshals messages in and out of the
// minimizer without reallocating every sweep.
type factorState struct {
	edges     []EdgeRef
	minimizer Minimizer
	enabled   bool
	scratch   []consensus.Weighted
}

func newFactorState(edges []EdgeRef, minimizer Minimizer) factorState {
	return factorState{
		edges:     edges,
		minimizer: minimizer,
		enabled:   true,
		scratch:   make([]consensus.Weighted, len(edges)),
	}
}
