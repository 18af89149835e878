package objectivegraph

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/weight"
)

// sparseSweepRatio is the enabledFactors/totalFactors threshold below
// which the factor sweep enumerates the enabled-index set instead of
// scanning every factor and skipping disabled ones inline.
const sparseSweepRatio = 0.15

// forEach is the parallel sweep runtime: a serial or fork-join for-each
// over [0, n), bounded at g.workers concurrent goroutines. It is the one
// primitive both sweeps in Iterate share.
func (g *Graph) forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	if !g.parallel || n == 1 || g.workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = eg.Wait() // fn never returns an error; a panic inside fn propagates uncaught
}

// Iterate runs one scheduler iteration: factor sweep, variable sweep,
// iteration count increment, convergence test, then callbacks. A no-op
// returning true on an already-converged graph.
func (g *Graph) Iterate() bool {
	if g.converged {
		return true
	}

	g.sweeping = true

	g.sweepFactors()
	g.sweepVariables()

	g.iterations++
	g.converged = g.checkConvergence()

	g.sweeping = false

	g.inCallback = true
	for _, fn := range g.onIterate {
		fn(g)
	}
	g.inCallback = false

	return g.converged
}

func (g *Graph) sweepFactors() {
	total := len(g.factors)
	if total == 0 {
		return
	}

	enabled := len(g.enabledFactors)
	if float64(enabled)/float64(total) < sparseSweepRatio {
		g.forEach(enabled, func(i int) {
			g.runFactor(g.enabledFactors[i])
		})
		return
	}

	g.forEach(total, func(i int) {
		f := FactorRef(i)
		if g.factors[f].enabled {
			g.runFactor(f)
		}
	})
}

// runFactor fills the factor's exchange buffer with messages-to-factor,
// invokes its minimizer once, then absorbs the results back into each
// edge. Touches only this factor's own edges.
func (g *Graph) runFactor(f FactorRef) {
	fs := &g.factors[f]
	for i, e := range fs.edges {
		fs.scratch[i] = g.edges[e].messageToFactor()
	}

	fs.minimizer(fs.scratch)

	admm := g.isADMM()
	for i, e := range fs.edges {
		g.edges[e].absorbFactorSide(fs.scratch[i], admm)
	}
}

func (g *Graph) sweepVariables() {
	g.forEach(len(g.variables), func(i int) {
		g.runVariable(VariableRef(i))
	})
}

// runVariable rebuilds the enabled-edge cache if dirty, evaluates the
// bound equality rule over the enabled incident edges, and broadcasts the
// result back via variable-side absorption. Touches only this variable's
// own edges. An empty enabled-edge set is a no-op.
func (g *Graph) runVariable(v VariableRef) {
	vs := &g.variables[v]
	if vs.enabledNeedsUpdate {
		vs.rebuildEnabledEdges(g.edges)
	}

	n := len(vs.enabledEdges)
	if n == 0 {
		return
	}

	if cap(vs.scratch) < n {
		vs.scratch = make([]consensus.Weighted, n)
	} else {
		vs.scratch = vs.scratch[:n]
	}
	for i, e := range vs.enabledEdges {
		vs.scratch[i] = g.edges[e].messageToVariable()
	}

	if g.debugAssertions && !g.isADMM() {
		g.assertNoConflictingInfinite(v, vs.scratch)
	}

	result := g.rule.Resolve(vs.scratch)
	vs.value = result.Value
	vs.hasValue = true

	alpha := g.learningRate
	admm := g.isADMM()
	for _, e := range vs.enabledEdges {
		g.edges[e].absorbVariableSide(result, alpha, admm)
	}
}

func (g *Graph) assertNoConflictingInfinite(v VariableRef, incoming []consensus.Weighted) {
	const tol = 1e-9
	seen := false
	var first float64
	for _, in := range incoming {
		if in.Weight != weight.Infinite {
			continue
		}
		if !seen {
			seen = true
			first = in.Value
			continue
		}
		if math.Abs(in.Value-first) > tol {
			panic(fmt.Errorf("objectivegraph: variable %d has conflicting Infinite messages (%v vs %v)", v, first, in.Value))
		}
	}
}

// checkConvergence scans every enabled edge's recorded msgDiff. Any edge
// without one yet, or with one exceeding δ, means not converged.
func (g *Graph) checkConvergence() bool {
	for i := range g.edges {
		e := &g.edges[i]
		if !e.enabled {
			continue
		}
		if !e.hasMsgDiff {
			return false
		}
		if e.msgDiff > g.convergenceDelta {
			return false
		}
	}
	return true
}
