// Package objectivegraph implements a message-passing solver over a
// bipartite factor graph: variables and factors exchange weighted
// messages over edges and reach consensus via ADMM or TWA, driven by a
// two-phase parallel iteration scheduler.
package objectivegraph

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/weight"
)

// Graph is the root container: ObjectiveGraph from the spec. Variables,
// factors, and edges live in three parallel slices addressed by dense
// integer refs; nothing is ever removed from them.
type Graph struct {
	algorithm        Algorithm
	rule             consensus.Rule
	learningRate     float64
	convergenceDelta float64
	parallel         bool
	workers          int
	debugAssertions  bool

	variables []variableState
	factors   []factorState
	edges     []edgeState

	enabledFactors []FactorRef
	factorSetPos   map[FactorRef]int

	iterations int
	converged  bool

	onIterate []func(*Graph)
	onReinit  []func(*Graph)

	sweeping   bool
	inCallback bool
}

// New constructs a Graph bound to algorithm with the given learning rate
// α. convergenceDelta defaults to 1e-5, parallel to true, workers to
// runtime.GOMAXPROCS(0); override any of these with Option values.
func New(algorithm Algorithm, learningRate float64, opts ...Option) *Graph {
	g := &Graph{
		algorithm:        algorithm,
		rule:             algorithm.rule(),
		learningRate:     learningRate,
		convergenceDelta: 1e-5,
		parallel:         true,
		workers:          runtime.GOMAXPROCS(0),
		factorSetPos:     make(map[FactorRef]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) isADMM() bool { return g.algorithm == ADMM }

func (g *Graph) guardNotSweeping(op string) {
	if g.debugAssertions && g.sweeping {
		panic(fmt.Errorf("objectivegraph: %s called while a sweep is in progress", op))
	}
}

// guardNotBuildTimeOnly panics unconditionally when op is called from
// inside an OnIterate/OnReinit callback: construction is graph-build time
// only.
func (g *Graph) guardNotBuildTimeOnly(op string) {
	if g.inCallback {
		panic(fmt.Errorf("objectivegraph: %s called from inside a callback; graph construction is build-time only", op))
	}
}

// CreateVariable adds a new variable with the given initial (value,
// weight), used both as its value until the first equality sweep and as
// the state Reinitialize restores.
func (g *Graph) CreateVariable(initialValue float64, initialWeight weight.MessageWeight) VariableRef {
	g.guardNotSweeping("CreateVariable")
	g.guardNotBuildTimeOnly("CreateVariable")
	ref := VariableRef(len(g.variables))
	g.variables = append(g.variables, newVariableState(initialValue, initialWeight))
	return ref
}

// CreateEdge attaches a new edge to v, inheriting v's current value and
// initial weight as its starting (z, weightToLeft); under ADMM the weight
// is pinned to weight.Standard. Panics if v does not
// reference a variable created on this graph.
func (g *Graph) CreateEdge(v VariableRef) EdgeRef {
	g.guardNotSweeping("CreateEdge")
	g.guardNotBuildTimeOnly("CreateEdge")
	if int(v) < 0 || int(v) >= len(g.variables) {
		panic(fmt.Errorf("objectivegraph: CreateEdge: unknown variable %d", v))
	}

	vs := &g.variables[v]
	ref := EdgeRef(len(g.edges))
	g.edges = append(g.edges, newEdgeState(v, vs.currentValue(), clampWeight(vs.initialWeight, g.isADMM())))
	vs.edges = append(vs.edges, ref)
	vs.enabledEdges = append(vs.enabledEdges, ref)
	return ref
}

// CreateFactor adds a new factor over edges, in the declared order the
// minimizer will see every sweep. Panics if any edge is unknown, already
// bound to another factor, or repeated within edges.
func (g *Graph) CreateFactor(edges []EdgeRef, minimizer Minimizer) FactorRef {
	g.guardNotSweeping("CreateFactor")
	g.guardNotBuildTimeOnly("CreateFactor")

	seen := make(map[EdgeRef]struct{}, len(edges))
	for _, e := range edges {
		if int(e) < 0 || int(e) >= len(g.edges) {
			panic(fmt.Errorf("objectivegraph: CreateFactor: unknown edge %d", e))
		}
		if _, dup := seen[e]; dup {
			panic(fmt.Errorf("objectivegraph: CreateFactor: edge %d listed more than once", e))
		}
		if owner := g.edges[e].factor; int(owner) < len(g.factors) && slices.Contains(g.factors[owner].edges, e) {
			panic(fmt.Errorf("objectivegraph: CreateFactor: edge %d already bound to factor %d", e, owner))
		}
		seen[e] = struct{}{}
	}

	owned := make([]EdgeRef, len(edges))
	copy(owned, edges)

	ref := FactorRef(len(g.factors))
	g.factors = append(g.factors, newFactorState(owned, minimizer))

	for _, e := range owned {
		g.edges[e].factor = ref
	}

	g.factorSetPos[ref] = len(g.enabledFactors)
	g.enabledFactors = append(g.enabledFactors, ref)

	return ref
}

// Value returns v's current value: the live consensus value after its
// first equality sweep, the initial value before.
func (g *Graph) Value(v VariableRef) float64 {
	return g.variables[v].currentValue()
}

// FactorEnabled reports whether f currently participates in sweeps.
func (g *Graph) FactorEnabled(f FactorRef) bool {
	return g.factors[f].enabled
}

// NumVariables returns the number of variables created so far.
func (g *Graph) NumVariables() int { return len(g.variables) }

// NumEdges returns the number of edges created so far.
func (g *Graph) NumEdges() int { return len(g.edges) }

// NumFactors returns the number of factors created so far.
func (g *Graph) NumFactors() int { return len(g.factors) }

// NumEnabledFactors returns the number of currently enabled factors.
func (g *Graph) NumEnabledFactors() int { return len(g.enabledFactors) }

// NumEnabledEdges returns the number of currently enabled edges.
func (g *Graph) NumEnabledEdges() int {
	n := 0
	for i := range g.edges {
		if g.edges[i].enabled {
			n++
		}
	}
	return n
}

// LearningRate returns the current α.
func (g *Graph) LearningRate() float64 { return g.learningRate }

// SetLearningRate updates α. Undefined if called while a sweep is in
// progress; with WithDebugAssertions, that case panics.
func (g *Graph) SetLearningRate(rate float64) {
	g.guardNotSweeping("SetLearningRate")
	g.learningRate = rate
}

// Iterations returns the number of completed iterations.
func (g *Graph) Iterations() int { return g.iterations }

// Converged reports whether the graph reached convergence.
func (g *Graph) Converged() bool { return g.converged }

// OnIterate registers fn to run, serially on the driving goroutine, after
// every iteration that actually ran its sweeps.
func (g *Graph) OnIterate(fn func(*Graph)) {
	g.onIterate = append(g.onIterate, fn)
}

// OnReinit registers fn to run after every Reinitialize.
func (g *Graph) OnReinit(fn func(*Graph)) {
	g.onReinit = append(g.onReinit, fn)
}

// Reinitialize restores every variable and edge to its construction-time
// (value, weight), re-enables every factor, zeroes every dual accumulator,
// clears message history, resets iterations/converged, and fires reinit
// callbacks.
func (g *Graph) Reinitialize() {
	for i := range g.variables {
		g.variables[i].resetForReinit()
	}

	for i := range g.edges {
		v := &g.variables[g.edges[i].variable]
		g.edges[i].resetForReinit(v.initialValue, clampWeight(v.initialWeight, g.isADMM()))
	}

	for i := range g.factors {
		g.factors[i].enabled = true
	}
	g.enabledFactors = g.enabledFactors[:0]
	g.factorSetPos = make(map[FactorRef]int, len(g.factors))
	for i := range g.factors {
		ref := FactorRef(i)
		g.factorSetPos[ref] = len(g.enabledFactors)
		g.enabledFactors = append(g.enabledFactors, ref)
	}

	g.iterations = 0
	g.converged = false

	g.inCallback = true
	for _, fn := range g.onReinit {
		fn(g)
	}
	g.inCallback = false
}
